package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrMissingEmail       = errors.New("email is required")
	ErrNoUser             = errors.New("no registered user")
)

// SessionService keeps the single device-local user record. It gates views; it is not an
// authentication mechanism and compares passwords as stored.
type SessionService struct {
	store      storage.Store
	logger     *zap.Logger
	loginDelay time.Duration

	mu   sync.RWMutex
	user *domain.User
}

func NewSessionService(store storage.Store, loginDelay time.Duration, logger *zap.Logger) *SessionService {
	return &SessionService{
		store:      store,
		logger:     logger,
		loginDelay: loginDelay,
	}
}

func (s *SessionService) Load(ctx context.Context) error {
	var user domain.User
	found, err := storage.GetJSON(ctx, s.store, storage.KeyCurrentUser, &user)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if found {
		s.user = &user
	} else {
		s.user = nil
	}
	return nil
}

// Register stores user as the current, logged-in account, replacing any previous one.
func (s *SessionService) Register(ctx context.Context, user domain.User) (domain.User, error) {
	if strings.TrimSpace(user.Email) == "" {
		return domain.User{}, ErrMissingEmail
	}
	if user.Password != user.PasswordConfirm {
		return domain.User{}, ErrPasswordMismatch
	}
	user.IsLoggedIn = true

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.commit(ctx, user); err != nil {
		return domain.User{}, err
	}
	s.logger.Info("user registered", zap.String("email", user.Email))
	return user, nil
}

// Login answers after the configured delay whether or not the credentials match.
func (s *SessionService) Login(ctx context.Context, email, password string) (domain.User, error) {
	if s.loginDelay > 0 {
		timer := time.NewTimer(s.loginDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.User{}, ctx.Err()
		case <-timer.C:
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil || s.user.Email != email || s.user.Password != password {
		s.logger.Warn("login rejected", zap.String("email", email))
		return domain.User{}, ErrInvalidCredentials
	}

	user := *s.user
	user.IsLoggedIn = true
	if err := s.commit(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *SessionService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return ErrNoUser
	}
	user := *s.user
	user.IsLoggedIn = false
	return s.commit(ctx, user)
}

// Current returns the stored user, if any.
func (s *SessionService) Current() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

func (s *SessionService) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.IsLoggedIn
}

func (s *SessionService) commit(ctx context.Context, user domain.User) error {
	if err := storage.SetJSON(ctx, s.store, storage.KeyCurrentUser, user); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	s.user = &user
	return nil
}
