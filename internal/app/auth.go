package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"syllabus-service/internal/domain"
)

const minPasswordLen = 6

// AuthService implements the email/password auth collaborator: sign-up,
// sign-in and bearer-token verification. Banned status is checked on every
// session start and is fatal to the session.
type AuthService struct {
	users    UserStore
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

func NewAuthService(users UserStore, secret []byte, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{users: users, secret: secret, tokenTTL: tokenTTL, now: time.Now}
}

// SignUp registers a new account with the default user role and active
// status, and returns the profile plus a signed token.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (domain.UserProfile, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.UserProfile{}, "", fmt.Errorf("invalid email address")
	}
	if len(password) < minPasswordLen {
		return domain.UserProfile{}, "", fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.UserProfile{}, "", domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.UserProfile{}, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserProfile{}, "", err
	}
	profile := domain.UserProfile{
		UID:          uuid.NewString(),
		Email:        email,
		Role:         domain.RoleUser,
		Status:       domain.StatusActive,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.users.CreateProfile(ctx, profile); err != nil {
		return domain.UserProfile{}, "", err
	}
	token, err := s.issueToken(profile)
	return profile, token, err
}

// SignIn checks credentials and banned status. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (domain.UserProfile, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	profile, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.UserProfile{}, "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.UserProfile{}, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)) != nil {
		return domain.UserProfile{}, "", domain.ErrInvalidCredentials
	}
	if profile.Status == domain.StatusBanned {
		return domain.UserProfile{}, "", domain.ErrUserBanned
	}
	token, err := s.issueToken(profile)
	return profile, token, err
}

// Verify parses a bearer token and loads the live profile behind it. A
// profile missing for a valid identity is auto-created with defaults; a
// banned profile fails verification so every session start enforces the
// ban.
func (s *AuthService) Verify(ctx context.Context, tokenString string) (domain.UserProfile, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return domain.UserProfile{}, domain.ErrInvalidCredentials
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.UserProfile{}, domain.ErrInvalidCredentials
	}
	uid, _ := claims["uid"].(string)
	email, _ := claims["email"].(string)
	if uid == "" {
		return domain.UserProfile{}, domain.ErrInvalidCredentials
	}

	profile, err := s.users.GetProfile(ctx, uid)
	if errors.Is(err, domain.ErrUserNotFound) {
		profile = domain.UserProfile{
			UID:       uid,
			Email:     email,
			Role:      domain.RoleUser,
			Status:    domain.StatusActive,
			CreatedAt: s.now(),
		}
		if err := s.users.CreateProfile(ctx, profile); err != nil {
			return domain.UserProfile{}, err
		}
	} else if err != nil {
		return domain.UserProfile{}, err
	}
	if profile.Status == domain.StatusBanned {
		return domain.UserProfile{}, domain.ErrUserBanned
	}
	return profile, nil
}

func (s *AuthService) issueToken(profile domain.UserProfile) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":   profile.UID,
		"email": profile.Email,
		"role":  string(profile.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	})
	return token.SignedString(s.secret)
}
