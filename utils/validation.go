package utils

import (
	"fmt"
	netmail "net/mail"
	"unicode/utf8"
)

const MinPasswordLength = 6

func ValidateEmail(email string) error {
	_, err := netmail.ParseAddress(email)

	return err
}

func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	return nil
}

func SamePassword(password string, confirmedPassword string) bool {
	return password == confirmedPassword
}
