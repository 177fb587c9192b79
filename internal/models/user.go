package models

import "time"

// AnonymousID is the id carried by the Anonymous identity. It never matches a stored user.
const AnonymousID int64 = -1

// Anonymous is the identity resolved for requests without a valid session token.
var Anonymous = Identity{ID: AnonymousID, Username: "Anonymous"}

// User is a registered account as persisted in the users table.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	SessionToken string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity returns the public view of the user handed to request handlers.
func (u User) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username}
}

// Identity is the resolved "current user" of a request.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// IsAnonymous reports whether the identity is the Anonymous sentinel.
func (i Identity) IsAnonymous() bool {
	return i.ID == AnonymousID
}
