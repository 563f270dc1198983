package service

import (
	"crypto/rand"
	"encoding/base64"
	"io"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultBcryptCost = 10

	tempPasswordBytes = 6
	// Caracteres que se confunden al copiar la clave desde el correo.
	ambiguousChars = "Ilo0"
)

var randReader io.Reader = rand.Reader

// PasswordHasher abstrae el hash de claves para poder reemplazarlo en tests.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// BcryptHasher implementa PasswordHasher con bcrypt.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

func (h *BcryptHasher) Verify(plain, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// GenerateTempPassword devuelve una clave de 8 caracteres base64 sin
// caracteres ambiguos. Repite el sorteo hasta obtener una valida.
func GenerateTempPassword() (string, error) {
	buf := make([]byte, tempPasswordBytes)
	for {
		if _, err := io.ReadFull(randReader, buf); err != nil {
			return "", err
		}
		candidate := base64.StdEncoding.EncodeToString(buf)
		if !strings.ContainsAny(candidate, ambiguousChars) {
			return candidate, nil
		}
	}
}
