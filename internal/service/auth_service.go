package service

import (
	"context"
	"time"

	"preparedness-service/internal/models"
	"preparedness-service/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Claims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type AuthService struct {
	Users    *repository.UserRepository
	Log      *zap.Logger
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(users *repository.UserRepository, secret string, tokenTTL time.Duration, log *zap.Logger) *AuthService {
	return &AuthService{Users: users, Log: log, secret: []byte(secret), tokenTTL: tokenTTL}
}

// loginRoles maps the role labels the login form sends to stored roles.
var loginRoles = map[string]string{
	"Student":         models.RoleStudent,
	"Institute-Admin": models.RoleInstituteAdmin,
	"Admin":           models.RoleAdmin,
}

type AuthResult struct {
	Token string       `json:"token"`
	Role  string       `json:"role"`
	User  *models.User `json:"-"`
	IsNew bool         `json:"-"`
}

// Login verifies credentials for the given role label and issues a token.
func (s *AuthService) Login(ctx context.Context, roleLabel, email, password string) (*AuthResult, error) {
	role, ok := loginRoles[roleLabel]
	if !ok {
		return nil, ErrInvalidInput
	}

	user, err := s.Users.FindByEmailAndRole(ctx, email, role)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.Log.Info("login failed, user not found", zap.String("email", email), zap.String("role", role))
		return nil, ErrInvalidCreds
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.Log.Info("login failed, bad password", zap.String("userId", user.ID))
		return nil, ErrInvalidCreds
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	s.Log.Info("login succeeded", zap.String("userId", user.ID), zap.String("role", user.Role))
	return &AuthResult{Token: token, Role: user.Role, User: user}, nil
}

// Signup creates the user, or resets the password of an existing account
// with the same email, then issues a token either way.
func (s *AuthService) Signup(ctx context.Context, email, password, name, role string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}
	if role == "" {
		role = models.RoleStudent
	}
	if !models.ValidRole(role) {
		return nil, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	existing, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	var user *models.User
	isNew := existing == nil
	if existing != nil {
		update := bson.M{"password": string(hash), "role": role}
		if name != "" {
			update["name"] = name
		}
		user, err = s.Users.Update(ctx, existing.ID, update)
		if err != nil {
			return nil, err
		}
	} else {
		user = &models.User{
			Email:     email,
			Password:  string(hash),
			Name:      name,
			Role:      role,
			CreatedAt: time.Now(),
		}
		if err := s.Users.Create(ctx, user); err != nil {
			return nil, err
		}
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	s.Log.Info("signup succeeded", zap.String("userId", user.ID), zap.Bool("isNew", isNew))
	return &AuthResult{Token: token, Role: user.Role, User: user, IsNew: isNew}, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	claims := &Claims{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
