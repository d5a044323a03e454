// Package validation содержит проверки пользовательского ввода.
package validation

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minUsernameLen = 3
	minPasswordLen = 5
	minFeedbackLen = 5
)

var zipCodeRe = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// RegistrationInput — поля формы регистрации, подлежащие проверке.
type RegistrationInput struct {
	Username string
	Email    string
	Password string
	ZipCode  string
}

// ValidateRegistration проверяет форму регистрации и возвращает ошибки по полям.
// Пустая карта означает, что форма корректна.
func ValidateRegistration(in RegistrationInput) map[string]string {
	errs := make(map[string]string)

	if utf8.RuneCountInString(strings.TrimSpace(in.Username)) < minUsernameLen {
		errs["username"] = "username must be at least 3 characters long"
	}
	if !ValidEmail(in.Email) {
		errs["email"] = "email is invalid"
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLen {
		errs["password"] = "password must be at least 5 characters long"
	}
	if in.ZipCode != "" && !ValidZipCode(in.ZipCode) {
		errs["zipCode"] = "zip code is invalid"
	}

	return errs
}

// ValidEmail сообщает, является ли строка корректным адресом почты.
func ValidEmail(email string) bool {
	if email == "" {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}

// ValidZipCode сообщает, является ли строка корректным почтовым индексом.
func ValidZipCode(zip string) bool {
	return zipCodeRe.MatchString(zip)
}

// ValidFeedback сообщает, достаточно ли содержательный текст отзыва.
func ValidFeedback(content string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(content)) >= minFeedbackLen
}
