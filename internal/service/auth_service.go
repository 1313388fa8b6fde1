package service

import (
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/repository"
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength applies to registration and password changes.
const MinPasswordLength = 8

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("trainer with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrInvalidToken         = errors.New("invalid or expired token")
)

// RegisterInput carries the fields of the sign-up form.
type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	BusinessName string
	Phone        string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Trainer, error)
	Login(ctx context.Context, email, password string) (token string, trainer *domain.Trainer, err error)
	// ParseToken validates a session token and returns the trainer ID it was issued for.
	ParseToken(tokenString string) (string, error)
	TokenTTL() time.Duration
}

// authService implements the AuthService interface.
type authService struct {
	trainerRepo   repository.TrainerRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(trainerRepo repository.TrainerRepository, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if jwtExpiration <= 0 {
		jwtExpiration = 24 * time.Hour
	}
	return &authService{
		trainerRepo:   trainerRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Register handles new trainer registration.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*domain.Trainer, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = domain.NormalizeEmail(in.Email)
	if in.Name == "" {
		return nil, validationError("name is required")
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	_, err := s.trainerRepo.GetByEmail(ctx, in.Email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	trainer := &domain.Trainer{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(in.Phone),
		BusinessName: strings.TrimSpace(in.BusinessName),
		Currency:     domain.DefaultCurrency,
		IsActive:     true,
	}
	if err := s.trainerRepo.Create(ctx, trainer); err != nil {
		// A concurrent registration can slip past the lookup; the unique index catches it.
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	trainer.PasswordHash = ""
	return trainer, nil
}

// Login handles trainer authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (token string, trainer *domain.Trainer, err error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		err = validationError("email and password cannot be empty")
		return
	}

	trainer, err = s.trainerRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrAuthenticationFailed
		}
		return "", nil, err
	}

	if err = bcrypt.CompareHashAndPassword([]byte(trainer.PasswordHash), []byte(password)); err != nil || !trainer.IsActive {
		return "", nil, ErrAuthenticationFailed
	}

	token, err = s.generateJWT(trainer.ID)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	trainer.PasswordHash = ""
	return token, trainer, nil
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

const jwtIssuer = "trainer-app"

func (s *authService) generateJWT(trainerID string) (string, error) {
	now := time.Now()
	claims := &jwtClaims{
		UserID: trainerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   trainerID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    jwtIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) ParseToken(tokenString string) (string, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: token has expired", ErrInvalidToken)
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

func (s *authService) TokenTTL() time.Duration {
	return s.jwtExpiration
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", ErrHashingFailed
	}
	return string(hashed), nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return validationError("password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > 72 {
		return validationError("password must be at most 72 bytes")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return validationError("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return validationError("invalid email address %q", email)
	}
	return nil
}
