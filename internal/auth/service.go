// Package auth provides the user directory and login session handling.
// There is no real account system behind it: users live in the key/value
// store, and passwords are kept as provided unless hashing is enabled.
package auth

import (
	"encoding/json"
	"fmt"
	"strings"

	"vibrato/internal/storage"
	"vibrato/pkg/errs"
	"vibrato/pkg/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Options configures a Service
type Options struct {
	// HashPasswords stores bcrypt hashes instead of plaintext. Off by
	// default; the demo user directory is local-only.
	HashPasswords bool
}

// Service manages the user directory under the "users" key and the
// logged-in user under "currentUser".
type Service struct {
	store         storage.Store
	logger        *logrus.Logger
	hashPasswords bool
}

// NewService creates an auth service over the given store
func NewService(store storage.Store, logger *logrus.Logger, opts Options) *Service {
	return &Service{
		store:         store,
		logger:        logger,
		hashPasswords: opts.HashPasswords,
	}
}

// SignUp creates a new account and logs it in. Missing fields and
// duplicate emails fail with a ValidationError.
func (s *Service) SignUp(name, email, password string) (models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" || password == "" {
		return models.User{}, errs.NewValidation("name, email and password are required")
	}

	users, err := s.loadUsers()
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if u.Email == email {
			return models.User{}, errs.NewValidation("an account with email %s already exists", email)
		}
	}

	stored := password
	if s.hashPasswords {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, fmt.Errorf("failed to hash password: %w", err)
		}
		stored = string(hash)
	}

	user := models.User{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    email,
		Password: stored,
	}
	users = append(users, user)

	if err := s.saveUsers(users); err != nil {
		return models.User{}, err
	}
	if err := s.setCurrentUser(&user); err != nil {
		return models.User{}, err
	}

	s.logger.WithField("email", email).Info("User signed up")
	return sanitize(user), nil
}

// Login authenticates by email and password and loads the user into the
// session
func (s *Service) Login(email, password string) (models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	users, err := s.loadUsers()
	if err != nil {
		return models.User{}, err
	}

	for _, u := range users {
		if u.Email != email {
			continue
		}
		if !s.checkPassword(u.Password, password) {
			break
		}
		if err := s.setCurrentUser(&u); err != nil {
			return models.User{}, err
		}
		s.logger.WithField("email", email).Info("User logged in")
		return sanitize(u), nil
	}

	return models.User{}, errs.NewValidation("invalid email or password")
}

// Logout clears the current user
func (s *Service) Logout() error {
	return s.setCurrentUser(nil)
}

// CurrentUser returns the logged-in user, if any
func (s *Service) CurrentUser() (models.User, bool, error) {
	value, ok, err := s.store.Get(storage.KeyCurrentUser)
	if err != nil || !ok {
		return models.User{}, false, err
	}

	var user models.User
	if err := json.Unmarshal(value, &user); err != nil {
		return models.User{}, false, fmt.Errorf("failed to decode current user: %w", err)
	}
	return sanitize(user), true, nil
}

// checkPassword compares a stored credential with a login attempt,
// handling both hashed and plaintext storage
func (s *Service) checkPassword(stored, attempt string) bool {
	if s.hashPasswords {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(attempt)) == nil
	}
	return stored == attempt
}

func (s *Service) loadUsers() ([]models.User, error) {
	value, ok, err := s.store.Get(storage.KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var users []models.User
	if err := json.Unmarshal(value, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (s *Service) saveUsers(users []models.User) error {
	data, err := json.Marshal(users)
	if err != nil {
		return err
	}
	if err := s.store.Set(storage.KeyUsers, data); err != nil {
		return fmt.Errorf("failed to save users: %w", err)
	}
	return nil
}

func (s *Service) setCurrentUser(user *models.User) error {
	if user == nil {
		return s.store.Delete(storage.KeyCurrentUser)
	}
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.store.Set(storage.KeyCurrentUser, data); err != nil {
		return fmt.Errorf("failed to save current user: %w", err)
	}
	return nil
}

// sanitize strips the credential before a user record leaves the package
func sanitize(u models.User) models.User {
	u.Password = ""
	return u
}
