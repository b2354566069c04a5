package models

import "time"

// AllowedUser is a mobile number granted access to the dashboard. UserID is filled in on the
// holder's first login.
type AllowedUser struct {
	ID        int64     `db:"id" json:"id"`
	Mobile    string    `db:"mobile" json:"mobile"`
	Name      *string   `db:"name" json:"name,omitempty"`
	UserID    *string   `db:"userid" json:"userid,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	IsAdmin   bool      `db:"-" json:"isAdmin"`
}
