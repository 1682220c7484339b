package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"timeguard/internal/models"
	"timeguard/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultTokenTTL = time.Hour
	tokenIssuer     = "timeguard"
)

// AuthOptions carries the token settings from config.
type AuthOptions struct {
	SigningKey string
	TokenTTL   time.Duration
}

var (
	ErrInvalidPassword  = errors.New("invalid password")
	ErrOperatorNotFound = errors.New("operator not found")
	ErrInvalidOperator  = errors.New("invalid operator")
	ErrInvalidToken     = errors.New("invalid token")
	ErrNoSigningKey     = errors.New("auth signing key not configured")
)

// OperatorService registers operators and issues the access tokens checked
// by the control API and the method channel.
type OperatorService struct {
	repo repository.Operators
	key  []byte
	ttl  time.Duration
	now  func() time.Time
}

func NewOperatorService(repo repository.Operators, opts AuthOptions) *OperatorService {
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &OperatorService{repo: repo, key: []byte(opts.SigningKey), ttl: ttl, now: time.Now}
}

// Register stores a new operator with a bcrypt hash of password.
func (s *OperatorService) Register(ctx context.Context, name, password string, role models.Role) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: name is empty", ErrInvalidOperator)
	}
	if role == "" {
		role = models.RoleObserver
	}
	if !role.Valid() {
		return 0, fmt.Errorf("%w: unknown role %q", ErrInvalidOperator, role)
	}
	hash, err := hashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidOperator, err)
	}
	return s.repo.Create(ctx, models.Operator{Name: name, Role: role, PasswordHash: hash})
}

// Claims are the JWT claims of an access token. The subject is the
// operator name.
type Claims struct {
	jwt.RegisteredClaims
	OperatorID int         `json:"operator_id"`
	Role       models.Role `json:"role"`
}

// SignIn checks credentials and returns a signed access token.
func (s *OperatorService) SignIn(ctx context.Context, name, password string) (string, error) {
	op, err := s.repo.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return "", err
	}
	if op == nil {
		return "", ErrOperatorNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidPassword
	}
	return s.issueToken(*op)
}

// Authenticate verifies an access token and returns the session it carries.
func (s *OperatorService) Authenticate(accessToken string) (models.Session, error) {
	if len(s.key) == 0 {
		return models.Session{}, ErrNoSigningKey
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(accessToken, claims,
		func(*jwt.Token) (interface{}, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.OperatorID <= 0 || !claims.Role.Valid() {
		return models.Session{}, ErrInvalidToken
	}
	return models.Session{OperatorID: claims.OperatorID, Name: claims.Subject, Role: claims.Role}, nil
}

func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *OperatorService) issueToken(op models.Operator) (string, error) {
	if len(s.key) == 0 {
		return "", ErrNoSigningKey
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   op.Name,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		OperatorID: op.ID,
		Role:       op.Role,
	})
	return token.SignedString(s.key)
}
