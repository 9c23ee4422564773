package domain

import "time"

// User representa una fila de la tabla users.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"user_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Age          *int      `json:"age"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

// UserSummary son los campos devueltos tras registro y login.
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Age      *int   `json:"age"`
}

// Profile son los campos devueltos por las consultas de perfil.
type Profile struct {
	ID        int64     `json:"id"`
	Username  string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       *int      `json:"age"`
	CreatedAt time.Time `json:"created_at"`
}

func (u User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Email:    u.Email,
		Age:      u.Age,
	}
}

func (u User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		CreatedAt: u.CreatedAt,
	}
}
