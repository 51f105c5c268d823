package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	UserName     string    `json:"userName" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Photo        string    `json:"photo"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// UserView is the login-time projection: the record minus the password hash
// and store timestamps.
type UserView struct {
	ID       uuid.UUID `json:"id"`
	UserName string    `json:"userName"`
	Email    string    `json:"email"`
	Photo    string    `json:"photo,omitempty"`
}

// ProfileView is the projection served by the profile endpoint. It keeps the
// timestamps but hides the id along with the password hash.
type ProfileView struct {
	UserName  string    `json:"userName"`
	Email     string    `json:"email"`
	Photo     string    `json:"photo,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) View() UserView {
	return UserView{
		ID:       u.ID,
		UserName: u.UserName,
		Email:    u.Email,
		Photo:    u.Photo,
	}
}

func (u *User) ProfileView() ProfileView {
	return ProfileView{
		UserName:  u.UserName,
		Email:     u.Email,
		Photo:     u.Photo,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
