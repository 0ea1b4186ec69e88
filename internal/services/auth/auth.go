// Package auth owns user registration, credential verification and the
// signed session tokens that identify callers on every other endpoint.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/markgregr/todoAgent_REST_server/internal/domain"
	"github.com/markgregr/todoAgent_REST_server/internal/storage"
)

const (
	minPasswordLength = 8
	maxEmailLength    = 255

	// bcrypt ignores everything past 72 bytes; truncate explicitly so long
	// passwords verify consistently.
	bcryptMaxInput = 72
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Password strength rules: checked in order, the first failure is reported.
var (
	upperPattern   = regexp.MustCompile(`[A-Z]`)
	lowerPattern   = regexp.MustCompile(`[a-z]`)
	digitPattern   = regexp.MustCompile(`\d`)
	specialPattern = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// Claims is the payload of a session token. The subject carries the user id.
type Claims struct {
	Email     string `json:"email,omitempty"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

type Service struct {
	log      *logrus.Entry
	users    storage.UserStore
	secret   []byte
	method   jwt.SigningMethod
	tokenTTL time.Duration
}

func New(log *logrus.Logger, users storage.UserStore, secret string, algorithm string, tokenTTL time.Duration) (*Service, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("auth: unknown signing algorithm %q", algorithm)
	}
	return &Service{
		log:      logrus.NewEntry(log),
		users:    users,
		secret:   []byte(secret),
		method:   method,
		tokenTTL: tokenTTL,
	}, nil
}

// Register validates the email and password, hashes the password and
// persists a new user. Duplicate emails (any letter case) yield
// domain.ErrEmailTaken.
func (s *Service) Register(ctx context.Context, email, password string) (*domain.User, error) {
	const op = "auth.Service.Register"
	log := s.log.WithField("operation", op)

	if verr := validateCredentials(email, password); verr != nil {
		return nil, verr
	}

	hash, err := hashPassword(password)
	if err != nil {
		log.WithError(err).Errorf("%s: failed to hash password", op)
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if !errors.Is(err, domain.ErrEmailTaken) {
			log.WithError(err).Errorf("%s: failed to create user", op)
		}
		return nil, err
	}

	log.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// Login verifies the credentials and issues a signed token. The same
// domain.ErrInvalidCredentials comes back whether the email is unknown or
// the password is wrong.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	const op = "auth.Service.Login"
	log := s.log.WithField("operation", op)

	user, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		log.WithError(err).Errorf("%s: failed to look up user", op)
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(truncate(password))); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		log.WithError(err).Errorf("%s: failed to sign token", op)
		return nil, "", err
	}

	log.WithField("user_id", user.ID).Info("user logged in")
	return user, token, nil
}

// UserByToken verifies a bearer token and loads its subject. Any defect —
// bad signature, malformed claims, expiry, or a subject that no longer
// exists — yields domain.ErrInvalidToken so callers cannot probe accounts.
func (s *Service) UserByToken(ctx context.Context, tokenString string) (*domain.User, error) {
	const op = "auth.Service.UserByToken"
	log := s.log.WithField("operation", op)

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{s.method.Alg()}))
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, domain.ErrInvalidToken
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		log.WithError(err).Errorf("%s: failed to load user", op)
		return nil, err
	}
	return user, nil
}

// TokenTTL reports the configured token lifetime, used for cookie max-age.
func (s *Service) TokenTTL() time.Duration {
	return s.tokenTTL
}

func (s *Service) issueToken(user *domain.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Email:     user.Email,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
}

func validateCredentials(email, password string) *domain.ValidationError {
	verr := domain.NewValidationError()
	if email == "" || utf8.RuneCountInString(email) > maxEmailLength || !emailPattern.MatchString(email) {
		verr.Set("email", "please enter a valid email address")
	}
	if msg := validatePasswordStrength(password); msg != "" {
		verr.Set("password", msg)
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// validatePasswordStrength returns the first failed requirement, or "" when
// the password is acceptable.
func validatePasswordStrength(password string) string {
	switch {
	case utf8.RuneCountInString(password) < minPasswordLength:
		return fmt.Sprintf("Password must be at least %d characters long", minPasswordLength)
	case !upperPattern.MatchString(password):
		return "Password must contain at least one uppercase letter"
	case !lowerPattern.MatchString(password):
		return "Password must contain at least one lowercase letter"
	case !digitPattern.MatchString(password):
		return "Password must contain at least one digit"
	case !specialPattern.MatchString(password):
		return "Password must contain at least one special character"
	default:
		return ""
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(truncate(password)), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func truncate(password string) string {
	if len(password) > bcryptMaxInput {
		return password[:bcryptMaxInput]
	}
	return password
}
