package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"

	"github.com/Neeraj-0217/real-time-chat-app/internal/boot"
	"github.com/Neeraj-0217/real-time-chat-app/internal/model"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 6
	MaxPasswordLength = 100
)

var ErrorInvalidParams = errors.New("invalid registration parameters")

type UserStore interface {
	CreateUser(params *model.CreateUserParams) (*model.User, error)
	UserByUsername(username string) (*model.User, error)
	UserByID(id model.UserID) (*model.User, error)
	UpdateUser(user *model.User) error
}

type service struct {
	store    UserStore
	secret   []byte
	lifetime time.Duration
}

func New(store UserStore, config *boot.Config) *service {
	return &service{
		store:    store,
		secret:   []byte(config.Auth.SecretKey),
		lifetime: time.Duration(config.Auth.TokenLifetime) * time.Minute,
	}
}

// TokenLifetime is exposed so the cookie max-age can match the token expiry.
func (s *service) TokenLifetime() time.Duration {
	return s.lifetime
}

// Register creates a user and logs it straight in, returning the signed
// access token alongside the record.
func (s *service) Register(params *model.CreateUserParams) (*model.User, string, error) {
	if len(params.Username) < MinUsernameLength {
		return nil, "", fmt.Errorf("%w: username must be at least %d characters", ErrorInvalidParams, MinUsernameLength)
	}
	if len(params.Password) < MinPasswordLength {
		return nil, "", fmt.Errorf("%w: password must be at least %d characters", ErrorInvalidParams, MinPasswordLength)
	}
	if len(params.Password) > MaxPasswordLength {
		return nil, "", fmt.Errorf("%w: password too long", ErrorInvalidParams)
	}
	if _, err := s.store.UserByUsername(params.Username); err == nil {
		return nil, "", model.ErrorUsernameTaken
	} else if !errors.Is(err, model.ErrorUserNotFound) {
		return nil, "", fmt.Errorf("checking username: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), 10)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	create := *params
	create.Password = string(hashed)
	user, err := s.store.CreateUser(&create)
	if err != nil {
		return nil, "", fmt.Errorf("creating user: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *service) Login(username, password string) (*model.User, string, error) {
	user, err := s.store.UserByUsername(username)
	if err != nil {
		if errors.Is(err, model.ErrorUserNotFound) {
			return nil, "", model.ErrorInvalidUsernameOrPassword
		}
		return nil, "", fmt.Errorf("fetching user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, "", model.ErrorInvalidUsernameOrPassword
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Verify parses and validates a token and resolves it to the user it names.
func (s *service) Verify(token string) (*model.User, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, model.ErrorNotAuthenticated
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, model.ErrorNotAuthenticated
	}
	username, ok := claims["sub"].(string)
	if !ok || username == "" {
		return nil, model.ErrorNotAuthenticated
	}

	user, err := s.store.UserByUsername(username)
	if err != nil {
		if errors.Is(err, model.ErrorUserNotFound) {
			return nil, model.ErrorNotAuthenticated
		}
		return nil, fmt.Errorf("resolving token subject: %w", err)
	}
	return user, nil
}

// UpdateProfile changes display name, password and avatar for a user.
// Empty fields are left untouched.
func (s *service) UpdateProfile(id model.UserID, displayName, password, profilePic string) (*model.User, error) {
	user, err := s.store.UserByID(id)
	if err != nil {
		return nil, fmt.Errorf("fetching user: %w", err)
	}

	if displayName != "" {
		user.DisplayName = displayName
	}
	if password != "" {
		if len(password) < MinPasswordLength {
			return nil, fmt.Errorf("%w: password must be at least %d characters", ErrorInvalidParams, MinPasswordLength)
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), 10)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		user.Password = string(hashed)
	}
	if profilePic != "" {
		user.ProfilePic = profilePic
	}

	if err := s.store.UpdateUser(user); err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}
	return user, nil
}

func (s *service) issueToken(user *model.User) (string, error) {
	claims := jwt.MapClaims{
		"sub": user.Username,
		"exp": time.Now().Add(s.lifetime).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return token, nil
}
