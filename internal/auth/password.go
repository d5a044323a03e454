// Package auth содержит примитивы аутентификации: хеширование паролей,
// сессионные токены и доступ к учётной записи через контекст запроса.
package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword хеширует пароль алгоритмом bcrypt (соль включена в результат).
func HashPassword(password string) (string, error) {
	if len(password) == 0 {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword сравнивает пароль с сохранённым хешем.
func VerifyPassword(hash, password string) error {
	if hash == "" {
		return errors.New("password hash is empty")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
