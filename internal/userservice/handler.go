package userservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/sushihentaime/inkpost/internal/common"
)

var (
	ErrAuthenticationFailure = errors.New("invalid email or password")
)

func NewUserService(db *sql.DB, tokens *TokenManager, mb common.MessageProducer, logger *slog.Logger) *UserService {
	if mb == nil {
		mb = common.NopProducer{}
	}

	return &UserService{
		m:      newUserModel(db),
		tokens: tokens,
		mb:     mb,
		logger: logger,
	}
}

// SignUp creates a user account, issues a bearer token and publishes a user.created event.
func (s *UserService) SignUp(ctx context.Context, req SignUpRequest) (*User, *Token, error) {
	u := User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     normalizeEmail(req.Email),
	}

	v := common.NewValidator()
	validateName(v, u.FirstName, "first_name")
	validateName(v, u.LastName, "last_name")
	validateEmail(v, u.Email)
	validatePassword(v, req.Password)
	if !v.Valid() {
		return nil, nil, v.ValidationError()
	}

	// The unique constraint still guards against a concurrent signup.
	_, err := s.m.getUserByEmail(ctx, u.Email)
	switch {
	case err == nil:
		return nil, nil, ErrDuplicateEmail
	case !errors.Is(err, ErrNotFound):
		return nil, nil, err
	}

	if err := u.Password.set(req.Password); err != nil {
		return nil, nil, err
	}

	if err := s.m.insertUser(ctx, &u); err != nil {
		return nil, nil, err
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, nil, err
	}

	s.publishUserCreated(ctx, &u)

	return &u, token, nil
}

// SignIn checks the credentials and issues a new bearer token.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*User, *Token, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil, ErrAuthenticationFailure
	}

	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, nil, ErrAuthenticationFailure
		default:
			return nil, nil, err
		}
	}

	ok, err := user.Password.matches(password)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrAuthenticationFailure
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, token, nil
}

// Authenticate resolves a bearer token to its user.
func (s *UserService) Authenticate(ctx context.Context, token string) (*User, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	user, err := s.m.getUserByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrInvalidToken
		default:
			return nil, err
		}
	}

	return user, nil
}

// GetUserByEmail matches email exactly, ignoring case and surrounding space.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.m.getUserByEmail(ctx, normalizeEmail(email))
}

// FindAuthorIDs returns the ids of users whose first or last name contains fragment.
// An empty result means no author matched, never "every author".
func (s *UserService) FindAuthorIDs(ctx context.Context, fragment string) ([]uuid.UUID, error) {
	return s.m.findIDsByName(ctx, fragment)
}

func (s *UserService) publishUserCreated(ctx context.Context, u *User) {
	msg, err := json.Marshal(common.UserCreatedEvent{Email: u.Email, FirstName: u.FirstName})
	if err != nil {
		s.logger.Error("could not encode user.created event", slog.String("error", err.Error()))
		return
	}

	// The account is already stored, a lost event only costs the welcome email.
	if err := s.mb.Publish(ctx, msg, common.UserCreatedKey, common.UserExchange); err != nil {
		s.logger.Error("could not publish user.created event", slog.String("user_id", u.ID.String()), slog.String("error", err.Error()))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) IsAnonymous() bool {
	return u == &AnonymousUser
}
