package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Draichi/canvas-ui/internal/storage"
	"github.com/Draichi/canvas-ui/internal/typeid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")
)

// User records live in the shared store next to the canvases.
const (
	keyUserByID    = "users/by-id/"
	keyUserByEmail = "users/by-email/"
)

const tokenTTL = 24 * time.Hour

type Service struct {
	store      storage.Store
	jwtSecret  []byte
	bcryptCost int

	// serializes the email uniqueness check with the write
	registerMu sync.Mutex
}

type Option func(*Service)

// WithBcryptCost overrides the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

func NewService(store storage.Store, jwtSecret string, opts ...Option) *Service {
	s := &Service{
		store:      store,
		jwtSecret:  []byte(jwtSecret),
		bcryptCost: 12,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AuthResult is what a renderer needs after signing in: the bearer token
// and the canvas it may open at /ws/canvas/{canvasId}.
type AuthResult struct {
	Token    string `json:"token"`
	User     User   `json:"user"`
	CanvasID string `json:"canvasId"`
}

// CanvasID is the canvas owned by userID. Each user has exactly one.
func CanvasID(userID string) string { return userID }

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// userRecord is the stored form of a user.
type userRecord struct {
	User
	Password string `json:"password"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, email, password, displayName string) (*AuthResult, error) {
	email = normalizeEmail(email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	s.registerMu.Lock()
	defer s.registerMu.Unlock()

	if _, err := s.store.Get(ctx, keyUserByEmail+email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	rec := userRecord{
		User: User{
			ID:          typeid.NewUserID(),
			Email:       email,
			DisplayName: displayName,
		},
		Password: string(hash),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal user: %w", err)
	}
	if err := s.store.Put(ctx, keyUserByID+rec.ID, data); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if err := s.store.Put(ctx, keyUserByEmail+email, []byte(rec.ID)); err != nil {
		return nil, fmt.Errorf("index user email: %w", err)
	}

	token, err := s.issueToken(rec.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: rec.User, CanvasID: CanvasID(rec.ID)}, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	id, err := s.store.Get(ctx, keyUserByEmail+normalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	rec, err := s.getRecord(ctx, string(id))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rec.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(rec.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: rec.User, CanvasID: CanvasID(rec.ID)}, nil
}

func (s *Service) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}

	userID, ok := claims["sub"].(string)
	if !ok || typeid.Validate(userID, typeid.PrefixUser) != nil {
		return "", fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	return userID, nil
}

func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	rec, err := s.getRecord(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &rec.User, nil
}

func (s *Service) getRecord(ctx context.Context, userID string) (*userRecord, error) {
	data, err := s.store.Get(ctx, keyUserByID+userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	var rec userRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", userID, err)
	}
	return &rec, nil
}

func (s *Service) issueToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}
