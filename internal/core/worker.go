// AngelaMos | 2026
// worker.go

package core

import (
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// Worker identifies this process to clients. It is created once at
// startup; the id never changes and the first-request flag flips exactly
// once.
type Worker struct {
	id     string
	served atomic.Bool
}

func NewWorker() *Worker {
	return NewWorkerWithID(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func NewWorkerWithID(id string) *Worker {
	return &Worker{id: id}
}

func (w *Worker) ID() string {
	return w.id
}

// ClaimFirst reports whether the caller is handling the first request
// this process has seen.
func (w *Worker) ClaimFirst() bool {
	return w.served.CompareAndSwap(false, true)
}
