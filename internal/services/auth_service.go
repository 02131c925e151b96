package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sportshop/internal/models"
	"sportshop/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, credential checks and bearer tokens.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenDuration time.Duration, logger *zap.Logger) *AuthService {
	if tokenDuration <= 0 {
		tokenDuration = 24 * time.Hour
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: tokenDuration,
		logger:     logger,
	}
}

// RegisterUser registers a new customer, hashes their password, and saves
// them to the database.
func (s *AuthService) RegisterUser(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := s.ensureAvailable(ctx, req.Username, req.Email); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:    req.Username,
		Email:       req.Email,
		Password:    string(hashedPassword),
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	s.logger.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Authenticate checks a username and password.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, models.ErrUserNotFound) {
			s.logger.Error("user lookup failed", zap.String("username", username), zap.Error(err))
		}
		// Do not reveal whether the username exists.
		return nil, models.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}
	return user, nil
}

// LoginUser authenticates a user and returns a JWT token if successful.
func (s *AuthService) LoginUser(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// IssueToken signs a bearer token for user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(s.tokenDurat).Unix(),
		"iat":      time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// UserIDFromClaims extracts the numeric user id of validated claims.
func UserIDFromClaims(claims jwt.MapClaims) (uint, error) {
	// JSON numbers decode as float64.
	v, ok := claims["user_id"].(float64)
	if !ok || v < 1 {
		return 0, fmt.Errorf("invalid token: missing user_id")
	}
	return uint(v), nil
}

// GetUser loads a user by id.
func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// EnsureAdmin creates the admin account when no user has its username.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, models.ErrUserNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	admin := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
		FullName: "Admin",
		IsAdmin:  true,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	s.logger.Info("admin user seeded", zap.String("username", username))
	return nil
}

func (s *AuthService) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return fmt.Errorf("%w: '%s'", models.ErrUsernameTaken, username)
	} else if !errors.Is(err, models.ErrUserNotFound) {
		return err
	}
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return fmt.Errorf("%w: '%s'", models.ErrEmailTaken, email)
	} else if !errors.Is(err, models.ErrUserNotFound) {
		return err
	}
	return nil
}
