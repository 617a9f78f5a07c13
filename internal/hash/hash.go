package hash

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	hashbytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hashbytes), nil
}

// Placeholder returns a credential hash nobody knows the password for. System
// accounts get one so their credential column is never empty or guessable.
func Placeholder() (string, error) {
	return HashPassword(uuid.NewString() + uuid.NewString())
}
