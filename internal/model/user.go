package model

import "time"

type UserID int64

type User struct {
	ID          UserID    `db:"id" json:"id"`
	Username    string    `db:"username" json:"username"`
	Password    string    `db:"password" json:"-"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Gender      string    `db:"gender" json:"gender,omitempty"`
	ProfilePic  string    `db:"profile_pic" json:"profile_pic,omitempty"`
	IsOnline    bool      `db:"is_online" json:"is_online"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type CreateUserParams struct {
	Username    string `json:"username" form:"username"`
	Password    string `json:"password" form:"password"`
	DisplayName string `json:"display_name" form:"display_name"`
	Gender      string `json:"gender" form:"gender"`
	ProfilePic  string `json:"-" form:"-"`
}

// UserSummary is the shape returned by search and contact listings.
type UserSummary struct {
	ID          UserID `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	ProfilePic  string `json:"profile_pic,omitempty"`
	IsOnline    bool   `json:"is_online"`
}
