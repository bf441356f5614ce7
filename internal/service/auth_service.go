package service

import (
	"errors"

	"go-restaurant-sync/internal/model"
	"go-restaurant-sync/internal/replica"
	"go-restaurant-sync/pkg/jwt"
)

var ErrInvalidPin = errors.New("invalid PIN")

type AuthService interface {
	Login(pin string) (*LoginResponse, error)
	ValidateToken(tokenString string) (*jwt.Claims, error)
}

type UserResponse struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Role   model.Role `json:"role"`
	Avatar string     `json:"avatar,omitempty"`
}

type LoginResponse struct {
	Token    string          `json:"token"`
	User     UserResponse    `json:"user"`
	Sections []model.Section `json:"sections"`
}

type authService struct {
	replica Replica
	issuer  *jwt.Issuer
}

func NewAuthService(r Replica, issuer *jwt.Issuer) AuthService {
	return &authService{replica: r, issuer: issuer}
}

// Login finds the first user whose PIN matches. Failures never reach the
// replication layer.
func (s *authService) Login(pin string) (*LoginResponse, error) {
	if s.replica.Phase() == replica.PhaseUnloaded {
		return nil, replica.ErrNotLoaded
	}
	if !model.ValidPin(pin) {
		return nil, ErrInvalidPin
	}

	users := s.replica.Snapshot().Users
	for i := range users {
		user := users[i]
		if !user.CheckPin(pin) {
			continue
		}
		token, err := s.issuer.GenerateToken(user.ID, user.Name, string(user.Role))
		if err != nil {
			return nil, errors.New("failed to generate token")
		}
		return &LoginResponse{
			Token: token,
			User: UserResponse{
				ID:     user.ID,
				Name:   user.Name,
				Role:   user.Role,
				Avatar: user.Avatar,
			},
			Sections: user.Role.Sections(),
		}, nil
	}
	return nil, ErrInvalidPin
}

func (s *authService) ValidateToken(tokenString string) (*jwt.Claims, error) {
	return s.issuer.ValidateToken(tokenString)
}
