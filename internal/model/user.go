// AngelaMos | 2026
// user.go

package model

import (
	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:Users,alias:u"`

	ID       int64  `bun:"id,pk,autoincrement"                 json:"id"`
	Email    string `bun:"email,type:varchar(255),notnull"     json:"email"`
	Password string `bun:"password,type:varchar(255),notnull"  json:"-"`
	Deleted  bool   `bun:"deleted,notnull,default:false"       json:"deleted"`
}

func (u *User) IsDeleted() bool {
	return u.Deleted
}

// UserWithPosts is a user as served to clients: never the password,
// always a posts list (empty rather than nil).
type UserWithPosts struct {
	User
	Posts []*Post `json:"posts"`
}
