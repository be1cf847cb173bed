// AngelaMos | 2026
// core_test.go

package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyStoreError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"pgx unique", &pgconn.PgError{Code: "23505"}, ErrDuplicateKey},
		{"pgx fk", &pgconn.PgError{Code: "23503"}, ErrForeignKey},
		{"pq unique", &pq.Error{Code: "23505"}, ErrDuplicateKey},
		{"mysql dup", &mysql.MySQLError{Number: 1062}, ErrDuplicateKey},
		{"mysql fk", &mysql.MySQLError{Number: 1452}, ErrForeignKey},
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: Users.email (2067)"), ErrDuplicateKey},
		{"sqlite fk", errors.New("constraint failed: FOREIGN KEY constraint failed (787)"), ErrForeignKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyStoreError(fmt.Errorf("insert: %w", tt.err))
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassifyStoreErrorPassthrough(t *testing.T) {
	assert.NoError(t, ClassifyStoreError(nil))

	plain := errors.New("connection reset")
	assert.Same(t, plain, ClassifyStoreError(plain))

	denied := &mysql.MySQLError{Number: 1045}
	assert.Equal(t, error(denied), ClassifyStoreError(denied))
}

func TestToAppError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("user 4: %w", ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("email: %w", ErrInvalidInput), http.StatusBadRequest, "BAD_REQUEST"},
		{ClassifyStoreError(&pgconn.PgError{Code: "23505"}), http.StatusConflict, "CONFLICT"},
		{ClassifyStoreError(&pgconn.PgError{Code: "23503"}), http.StatusConflict, "CONFLICT"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{NotFoundError("post"), http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		got := ToAppError(tt.err)
		assert.Equal(t, tt.status, got.Status, tt.err.Error())
		assert.Equal(t, tt.code, got.Code, tt.err.Error())
	}

	wrapped := fmt.Errorf("handler: %w", BadRequestError("bad id"))
	assert.True(t, IsAppError(wrapped))
	assert.Equal(t, "bad id", ToAppError(wrapped).Message)
	assert.ErrorIs(t, wrapped, ErrInvalidInput)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=1,p=4$"))

	ok, err := VerifyPassword("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("battery staple", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	again, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again)
}

func TestVerifyPasswordRejectsMalformed(t *testing.T) {
	for _, encoded := range []string{
		"plaintext",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1,t=1,p=1$!!$aGFzaA",
	} {
		_, err := VerifyPassword("x", encoded)
		assert.ErrorIs(t, err, ErrMalformedHash, encoded)
	}
}

func TestGenerateSecureToken(t *testing.T) {
	a, err := GenerateSecureToken(16)
	require.NoError(t, err)
	b, err := GenerateSecureToken(16)
	require.NoError(t, err)

	assert.Len(t, a, 24)
	assert.NotEqual(t, a, b)
}

func TestWorkerClaimFirstOnce(t *testing.T) {
	w := NewWorker()
	assert.Len(t, w.ID(), 8)
	assert.NotEqual(t, w.ID(), NewWorker().ID())

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if w.ClaimFirst() {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.False(t, w.ClaimFirst())
}

func TestJitteredDuration(t *testing.T) {
	assert.Equal(t, time.Duration(3), jitteredDuration(3))

	base := time.Hour
	for range 20 {
		got := jitteredDuration(base)
		assert.GreaterOrEqual(t, got, base)
		assert.Less(t, got, base+base/7)
	}
}

func TestSampleRatio(t *testing.T) {
	assert.InDelta(t, 0.1, SampleRatio(0), 1e-9)
	assert.InDelta(t, 0.1, SampleRatio(1.5), 1e-9)
	assert.InDelta(t, 0.5, SampleRatio(0.5), 1e-9)
	assert.InDelta(t, 1.0, SampleRatio(1), 1e-9)
}

func TestSqliteDSNEnablesForeignKeys(t *testing.T) {
	assert.Equal(t, "file:a.db?_pragma=foreign_keys(1)", sqliteDSN("file:a.db", "sqlite"))
	assert.Equal(t,
		"file:a?mode=memory&cache=shared&_pragma=foreign_keys(1)",
		sqliteDSN("file:a?mode=memory&cache=shared", "sqlite"),
	)
	assert.Equal(t, "file:a.db?_foreign_keys=1", sqliteDSN("file:a.db", "sqlite3"))
	assert.Equal(t, "file:a.db?_foreign_keys=1", sqliteDSN("file:a.db?_foreign_keys=1", "sqlite3"))
}
