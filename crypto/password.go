package crypto

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor. Tests lower it to bcrypt.MinCost.
var Cost = 12

// DummyHash is compared against when no user matches so that a failed
// lookup costs as much as a wrong password. It is built on first use at
// the current Cost.
var DummyHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("notekeeper-dummy"), Cost)
	if err != nil {
		panic(err)
	}
	return hash
})

// HashPassword returns a bcrypt hash with a fresh random salt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	return string(bytes), err
}

// CheckPasswordHash reports whether password matches hash. A malformed hash
// never matches.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
