// AngelaMos | 2026
// columns.go

package model

const (
	UsersTable = "Users"
	PostsTable = "Posts"

	UserEmailIndex = "email_index"
)

const (
	ColumnID       = "id"
	ColumnEmail    = "email"
	ColumnPassword = "password"
	ColumnDeleted  = "deleted"
	ColumnUserID   = "userId"
	ColumnData     = "data"
)
