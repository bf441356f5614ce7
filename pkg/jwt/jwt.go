package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing authorization token")
)

const issuer = "go-restaurant-sync"

// Claims identify a staff member logged in on a terminal.
type Claims struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	RoleCode string `json:"role_code"`
	jwt.RegisteredClaims
}

// Issuer signs and checks terminal session tokens.
type Issuer struct {
	secret     []byte
	expiration time.Duration
}

func NewIssuer(secret string, expiration time.Duration) *Issuer {
	if expiration <= 0 {
		expiration = 12 * time.Hour
	}
	return &Issuer{secret: []byte(secret), expiration: expiration}
}

// GenerateToken creates a new JWT token for a user
func (i *Issuer) GenerateToken(userID, name, roleCode string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		Name:     name,
		RoleCode: roleCode,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// ValidateToken parses and validates a JWT token
func (i *Issuer) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
