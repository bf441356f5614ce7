package model

import (
	"errors"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPin = errors.New("PIN must be 4 to 6 digits")

	pinPattern = regexp.MustCompile(`^[0-9]{4,6}$`)
)

// User is a staff member who logs in on a terminal with a PIN.
type User struct {
	ID     string `json:"id" validate:"required"`
	Name   string `json:"name" validate:"required"`
	Role   Role   `json:"role" validate:"required,oneof=ADMIN MANAGER WAITER CHEF"`
	Pin    string `json:"pin"` // bcrypt hash
	Avatar string `json:"avatar,omitempty"`
}

// ValidPin reports whether pin has the 4–6 digit shape terminals accept.
func ValidPin(pin string) bool {
	return pinPattern.MatchString(pin)
}

// SetPin hashes and sets the user's PIN
func (u *User) SetPin(pin string) error {
	if !ValidPin(pin) {
		return ErrInvalidPin
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Pin = string(hashed)
	return nil
}

// CheckPin verifies pin against the stored hash
func (u *User) CheckPin(pin string) bool {
	if u.Pin == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Pin), []byte(pin)) == nil
}

// CanAccess checks the user's role against a section
func (u *User) CanAccess(section Section) bool {
	return u.Role.CanAccess(section)
}
