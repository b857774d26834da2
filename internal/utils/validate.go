package utils

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

const MaxChatMessageLength = 2000

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.]{3,32}$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// NormalizeChatMessage trims the body and rejects empty or oversized messages.
func NormalizeChatMessage(message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("message must not be empty")
	}
	if utf8.RuneCountInString(message) > MaxChatMessageLength {
		return "", errors.New("message must be at most 2000 characters")
	}
	return message, nil
}

func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return errors.New("username must be 3-32 letters, digits, '_' or '.'")
	}
	return nil
}

func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return errors.New("email address is not valid")
	}
	return nil
}
