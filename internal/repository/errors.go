// AngelaMos | 2026
// errors.go

package repository

import (
	"fmt"

	"github.com/carterperez-dev/templates/go-htmx/internal/core"
)

// NotFoundError is returned by GetOrFail. It matches core.ErrNotFound.
type NotFoundError struct {
	Table string
	Key   any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s found with id %v", e.Table, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == core.ErrNotFound
}
