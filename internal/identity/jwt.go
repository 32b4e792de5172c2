package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTVerifier accepts HS256 tokens signed with a shared secret. It stands in
// for the identity service in local development and tests.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(_ context.Context, raw string) (Principal, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, ErrInvalidToken
	}

	email, _ := claims["email"].(string)
	if strings.TrimSpace(email) == "" {
		return Principal{}, fmt.Errorf("%w: email claim missing", ErrInvalidToken)
	}
	sub, _ := claims.GetSubject()
	return Principal{UID: sub, Email: strings.ToLower(email)}, nil
}

// IssueToken signs a token the verifier accepts.
func (v *JWTVerifier) IssueToken(email string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   email,
		"email": email,
		"exp":   time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
