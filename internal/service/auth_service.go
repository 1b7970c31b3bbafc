package service

import (
	"alcyxob/fitcoach/internal/config"
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 8

var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrInvalidRole          = fmt.Errorf("%w: role must be 'trainer' or 'client'", ErrValidationFailed)
	ErrPasswordTooShort     = fmt.Errorf("%w: password must be at least %d characters", ErrValidationFailed, MinPasswordLength)
	ErrInvalidEmail         = fmt.Errorf("%w: invalid email address", ErrValidationFailed)
)

// Identity is the authenticated caller.
type Identity struct {
	UserID primitive.ObjectID
	Role   domain.Role
}

type AuthService interface {
	Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	ParseToken(tokenString string) (*Identity, error)
	// ResolveUser identifies a caller by user id alone. Only used when the
	// user_id query parameter is enabled.
	ResolveUser(ctx context.Context, userID primitive.ObjectID) (*Identity, error)
}

type authService struct {
	userRepo      repository.UserRepository
	jwtSecret     []byte
	signingMethod jwt.SigningMethod
	jwtExpiration time.Duration
	issuer        string
}

func NewAuthService(userRepo repository.UserRepository, cfg config.JWTConfig) AuthService {
	if cfg.Secret == "" {
		panic("JWT secret cannot be empty")
	}
	method := jwt.GetSigningMethod(strings.ToUpper(cfg.Algorithm))
	if method == nil {
		method = jwt.SigningMethodHS256
	}
	expiration := cfg.Expiration
	if expiration <= 0 {
		expiration = time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		jwtSecret:     []byte(cfg.Secret),
		signingMethod: method,
		jwtExpiration: expiration,
		issuer:        cfg.Issuer,
	}
}

// Register handles new user registration.
func (s *authService) Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrValidationFailed)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if role != domain.RoleTrainer && role != domain.RoleClient {
		return nil, ErrInvalidRole
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}

	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		// another request may have registered the same email since GetByEmail
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	user.ID = userID
	user.PasswordHash = ""
	return user, nil
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, ErrAuthenticationFailed
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return token, user, nil
}

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (s *authService) generateJWT(user *domain.User) (string, error) {
	now := time.Now()
	claims := &jwtClaims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(s.signingMethod, claims)
	return token.SignedString(s.jwtSecret)
}

// ParseToken validates the signature, algorithm and expiry of a token.
func (s *authService) ParseToken(tokenString string) (*Identity, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != s.signingMethod.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if s.issuer != "" && !claims.VerifyIssuer(s.issuer, true) {
		return nil, ErrInvalidToken
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Role != domain.RoleTrainer && claims.Role != domain.RoleClient {
		return nil, ErrInvalidToken
	}
	return &Identity{UserID: userID, Role: claims.Role}, nil
}

func (s *authService) ResolveUser(ctx context.Context, userID primitive.ObjectID) (*Identity, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return &Identity{UserID: user.ID, Role: user.Role}, nil
}
