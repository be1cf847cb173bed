// AngelaMos | 2026
// post.go

package model

import (
	"github.com/uptrace/bun"
)

type Post struct {
	bun.BaseModel `bun:"table:Posts,alias:p"`

	ID     int64  `bun:"id,pk,autoincrement"            json:"id"`
	UserID int64  `bun:"userId,notnull"                 json:"userId"`
	Data   string `bun:"data,type:varchar(255),notnull" json:"data"`
}

// PostWithUser carries a shallow view of the owner. User is nil when the
// owner has been soft-deleted.
type PostWithUser struct {
	Post
	User *User `json:"user"`
}
