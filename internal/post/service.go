// AngelaMos | 2026
// service.go

package post

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
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

func (s *Service) List(ctx context.Context) ([]*model.PostWithUser, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*model.PostWithUser, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetOrFail(ctx context.Context, id int64) (*model.PostWithUser, error) {
	return s.repo.GetOrFail(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Create adds a placeholder post for an active user.
func (s *Service) Create(ctx context.Context, userID int64) (*model.PostWithUser, error) {
	return s.CreateWith(ctx, CreatePostRequest{
		UserID: userID,
		Data:   fmt.Sprintf("Post %d", s.now().UnixMilli()),
	})
}

func (s *Service) CreateWith(ctx context.Context, req CreatePostRequest) (*model.PostWithUser, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf(
			"create post: %s: %w",
			core.FormatValidationError(err),
			core.ErrInvalidInput,
		)
	}

	var out *model.PostWithUser
	err := core.InTx(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		owner, err := s.repo.Owner(ctx, req.UserID, repository.WithTx(tx))
		if err != nil {
			return err
		}
		if owner == nil {
			return &repository.NotFoundError{Table: model.UsersTable, Key: req.UserID}
		}

		p, err := s.repo.Insert(ctx, &model.Post{
			UserID: owner.ID,
			Data:   req.Data,
		}, repository.WithTx(tx))
		if err != nil {
			return err
		}

		out = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	return out, nil
}

func (s *Service) Update(
	ctx context.Context,
	id int64,
	req UpdatePostRequest,
) (*model.PostWithUser, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf(
			"update post: %s: %w",
			core.FormatValidationError(err),
			core.ErrInvalidInput,
		)
	}

	values := repository.Values{}
	if req.Data != nil {
		values[model.ColumnData] = *req.Data
	}

	var out *model.PostWithUser
	err := core.InTx(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		if _, err := s.repo.GetOrFail(ctx, id, repository.WithTx(tx)); err != nil {
			return err
		}

		p, err := s.repo.Update(ctx, id, values, repository.WithTx(tx))
		if err != nil {
			return err
		}

		out = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}

	return out, nil
}

// Delete removes a post permanently.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := core.InTx(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		p, err := s.repo.GetOrFail(ctx, id, repository.WithTx(tx))
		if err != nil {
			return err
		}

		return s.repo.Delete(ctx, p.ID, repository.WithTx(tx))
	})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	return nil
}
