package models

import (
	"encoding/json"
	"strings"
)

// User is an account of the admin tool as returned by the backend.
type User struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
}

// UnmarshalJSON accepts both "_id" and "id" as the identifier.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var raw struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = User(raw.plain)
	if u.ID == "" {
		u.ID = raw.AltID
	}
	return nil
}

// FullName joins first and last name, trimming missing parts.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DisplayName is what the header greets the user with.
func (u User) DisplayName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	if u.Email != "" {
		return u.Email
	}
	return "User"
}

// NewUserPayload is the body of POST /user.
type NewUserPayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	IsAdmin   bool   `json:"isAdmin"`
}
