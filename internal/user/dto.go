// AngelaMos | 2026
// dto.go

package user

import (
	"github.com/carterperez-dev/templates/go-htmx/internal/model"
)

type CreateUserRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type UpdateUserRequest struct {
	Email *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
}

type UserResponse struct {
	ID      int64          `json:"id"`
	Email   string         `json:"email"`
	Deleted bool           `json:"deleted"`
	Posts   []PostResponse `json:"posts"`
}

type PostResponse struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"userId"`
	Data   string `json:"data"`
}

func ToUserResponse(u *model.UserWithPosts) UserResponse {
	posts := make([]PostResponse, 0, len(u.Posts))
	for _, p := range u.Posts {
		posts = append(posts, PostResponse{ID: p.ID, UserID: p.UserID, Data: p.Data})
	}

	return UserResponse{
		ID:      u.ID,
		Email:   u.Email,
		Deleted: u.Deleted,
		Posts:   posts,
	}
}

func ToUserResponseList(users []*model.UserWithPosts) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToUserResponse(u))
	}
	return responses
}
