// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/carterperez-dev/templates/go-htmx/internal/core"
	"github.com/carterperez-dev/templates/go-htmx/internal/model"
	"github.com/carterperez-dev/templates/go-htmx/internal/repository"
)

type Service struct {
	db        *bun.DB
	repo      Repository
	validator *validator.Validate
	now       func() time.Time
}

func NewService(db *bun.DB, repo Repository) *Service {
	return &Service{
		db:        db,
		repo:      repo,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		now:       time.Now,
	}
}

func (s *Service) List(ctx context.Context) ([]*model.UserWithPosts, error) {
	return s.repo.List(ctx)
}

// Get returns nil, nil for an absent or deleted user.
func (s *Service) Get(ctx context.Context, id int64) (*model.UserWithPosts, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetOrFail(ctx context.Context, id int64) (*model.UserWithPosts, error) {
	return s.repo.GetOrFail(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Create inserts a user with a generated placeholder address and a random
// password, stored hashed.
func (s *Service) Create(ctx context.Context) (*model.UserWithPosts, error) {
	password, err := core.GenerateSecureToken(16)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	req := CreateUserRequest{
		Email:    s.placeholderEmail(),
		Password: password,
	}

	return s.CreateWith(ctx, req)
}

func (s *Service) CreateWith(ctx context.Context, req CreateUserRequest) (*model.UserWithPosts, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf(
			"create user: %s: %w",
			core.FormatValidationError(err),
			core.ErrInvalidInput,
		)
	}

	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	u, err := s.repo.Insert(ctx, &model.User{
		Email:    strings.ToLower(req.Email),
		Password: hash,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return u, nil
}

func (s *Service) Update(
	ctx context.Context,
	id int64,
	req UpdateUserRequest,
) (*model.UserWithPosts, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf(
			"update user: %s: %w",
			core.FormatValidationError(err),
			core.ErrInvalidInput,
		)
	}

	values := repository.Values{}
	if req.Email != nil {
		values[model.ColumnEmail] = strings.ToLower(*req.Email)
	}

	var out *model.UserWithPosts
	err := core.InTx(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		if _, err := s.repo.GetOrFail(ctx, id, repository.WithTx(tx)); err != nil {
			return err
		}

		u, err := s.repo.Update(ctx, id, values, repository.WithTx(tx))
		if err != nil {
			return err
		}

		out = u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	return out, nil
}

// Delete soft-deletes an active user. Deleting an absent or already
// deleted user fails with core.ErrNotFound.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := core.InTx(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		u, err := s.repo.GetOrFail(ctx, id, repository.WithTx(tx))
		if err != nil {
			return err
		}

		return s.repo.Delete(ctx, u.ID, repository.WithTx(tx))
	})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	return nil
}

func (s *Service) placeholderEmail() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("member+%d.%s@example.com", s.now().UnixMilli(), suffix)
}
