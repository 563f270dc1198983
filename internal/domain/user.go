package domain

import "time"

// User es la cuenta del foro. PasswordHash nunca se serializa en respuestas.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserUpdate lista los campos opcionales de una actualizacion parcial.
type UserUpdate struct {
	Name         *string
	PasswordHash *string
}

func (u UserUpdate) IsEmpty() bool {
	return u.Name == nil && u.PasswordHash == nil
}
