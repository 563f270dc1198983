package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTService emite y valida access tokens. Los tokens no expiran: siguen
// siendo validos mientras no cambie el secreto.
type JWTService struct {
	secret []byte
	issuer string
}

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

var ErrJWTInvalid = errors.New("jwt invalid")

const tokenIssuer = "forum-account"

func NewJWTService(secret string) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		issuer: tokenIssuer,
	}
}

// Issue firma un token para userID sin claim exp.
func (s *JWTService) Issue(userID string) (string, error) {
	if len(s.secret) == 0 || strings.TrimSpace(userID) == "" {
		return "", ErrJWTInvalid
	}
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   s.issuer,
			IssuedAt: jwt.NewNumericDate(time.Now().UTC()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify devuelve el userID de un token valido.
func (s *JWTService) Verify(tokenString string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrJWTInvalid
	}
	if strings.TrimSpace(tokenString) == "" {
		return "", ErrJWTInvalid
	}

	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", ErrJWTInvalid
	}
	if strings.TrimSpace(claims.UserID) == "" || claims.Issuer != s.issuer {
		return "", ErrJWTInvalid
	}
	return claims.UserID, nil
}
