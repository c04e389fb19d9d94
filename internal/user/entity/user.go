package entity

import "time"

// User is a row of the `users` table.
// Email is stored lowercase; Role is one of auth.RoleAdmin / auth.RoleClient.
type User struct {
	ID           string    `db:"id"`
	UserName     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

// PublicView is the part of a user that may leave the service.
type PublicView struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (u *User) Public() PublicView {
	return PublicView{ID: u.ID, UserName: u.UserName, Email: u.Email, Role: u.Role}
}
