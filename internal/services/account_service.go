package services

import (
	"errors"
	"fmt"
	"time"

	"antigravity/focus/internal/auth"
	"antigravity/focus/internal/models"
	"antigravity/focus/internal/repositories"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// guestPassword is the fixed placeholder credential for guest accounts.
const guestPassword = "guest"

// AuthResult is the outcome of a successful registration or login.
type AuthResult struct {
	Token    string
	Identity auth.Identity
	Nickname string
}

// AccountService registers and authenticates users and issues their tokens.
type AccountService struct {
	Users UserStore
	Codec *auth.Codec
}

func NewAccountService(users UserStore, codec *auth.Codec) *AccountService {
	return &AccountService{Users: users, Codec: codec}
}

// Register creates a new account and logs it in. The pre-insert existence
// check is an optimization; the store's unique constraint is the authority,
// so an insert-time violation also reports ErrUsernameTaken.
func (s *AccountService) Register(username, password, nickname string) (*AuthResult, error) {
	taken, err := s.Users.ExistsByUsername(username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	if nickname == "" {
		nickname = username
	}
	user := &models.User{Username: username, PasswordHash: string(hash), Nickname: nickname, IsGuest: false}
	if err := s.Users.CreateUser(user); err != nil {
		if errors.Is(err, repositories.ErrUsernameTaken) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return s.issue(user)
}

// Login checks the given credentials. An unknown username and a wrong
// password report the same error so usernames cannot be enumerated.
func (s *AccountService) Login(username, password string) (*AuthResult, error) {
	user, err := s.Users.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

// LoginAsGuest creates a throwaway account with a synthesized username and
// logs it in. The username derives from the current time plus a random
// component; the store's unique index remains the final collision authority.
func (s *AccountService) LoginAsGuest() (*AuthResult, error) {
	username := fmt.Sprintf("guest_%d_%s", time.Now().UnixMilli(), uuid.New().String()[:8])

	hash, err := bcrypt.GenerateFromPassword([]byte(guestPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{Username: username, PasswordHash: string(hash), Nickname: "游客", IsGuest: true}
	if err := s.Users.CreateUser(user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

// CheckUsername reports whether a username is still available.
func (s *AccountService) CheckUsername(username string) (bool, error) {
	taken, err := s.Users.ExistsByUsername(username)
	return !taken, err
}

func (s *AccountService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.Codec.Issue(user.Username, user.ID, user.IsGuest, time.Now())
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Token:    token,
		Identity: auth.Identity{UserID: user.ID, Username: user.Username, IsGuest: user.IsGuest},
		Nickname: user.Nickname,
	}, nil
}
