// AngelaMos | 2026
// dto.go

package post

import (
	"github.com/carterperez-dev/templates/go-htmx/internal/model"
)

type CreatePostRequest struct {
	UserID int64  `json:"userId" validate:"required,gt=0"`
	Data   string `json:"data"   validate:"required,max=255"`
}

type UpdatePostRequest struct {
	Data *string `json:"data,omitempty" validate:"omitempty,min=1,max=255"`
}

type OwnerResponse struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	Deleted bool   `json:"deleted"`
}

type PostResponse struct {
	ID     int64          `json:"id"`
	UserID int64          `json:"userId"`
	Data   string         `json:"data"`
	User   *OwnerResponse `json:"user"`
}

func ToPostResponse(p *model.PostWithUser) PostResponse {
	resp := PostResponse{
		ID:     p.ID,
		UserID: p.UserID,
		Data:   p.Data,
	}

	if p.User != nil {
		resp.User = &OwnerResponse{
			ID:      p.User.ID,
			Email:   p.User.Email,
			Deleted: p.User.Deleted,
		}
	}

	return resp
}

func ToPostResponseList(posts []*model.PostWithUser) []PostResponse {
	responses := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		responses = append(responses, ToPostResponse(p))
	}
	return responses
}
