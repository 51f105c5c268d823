package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sdas-dev/accountly/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carried by a session token. The token deliberately has no exp claim:
// session lifetime is bounded by the cookie alone, so the verifier only checks
// the signature.
type Claims struct {
	Email    string `json:"email"`
	UserID   string `json:"id"`
	UserName string `json:"userName"`
	jwt.RegisteredClaims
}

// JWTIssuer signs and verifies HS256 session tokens with a process-wide secret.
type JWTIssuer struct {
	secret []byte
}

func NewJWTIssuer(secret string) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret)}
}

func (i *JWTIssuer) Issue(user *models.User) (string, error) {
	claims := &Claims{
		Email:    user.Email,
		UserID:   user.ID.String(),
		UserName: user.UserName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

func (i *JWTIssuer) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
