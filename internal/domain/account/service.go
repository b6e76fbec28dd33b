package account

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinic/records/internal/platform/apperr"
	"github.com/clinic/records/internal/platform/auth"
	"github.com/clinic/records/internal/platform/db"
	"github.com/clinic/records/internal/platform/validation"
)

const (
	msgBadCredentials = "no active account found with the given credentials"
	msgEmailTaken     = "user with this email already exists."
	msgUsernameTaken  = "A user with that username already exists."
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// dummyHash is compared against when the email is unknown so a failed login
// costs the same bcrypt work either way.
var dummyHash, _ = auth.HashPassword("clinic-records-dummy-password")

type Service struct {
	repo   Repository
	tokens *auth.TokenIssuer
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo Repository, tokens *auth.TokenIssuer, logger zerolog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, logger: logger, now: time.Now}
}

// Register validates in and creates an active account with a bcrypt hash.
// All field problems are reported together.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Account, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = validation.NormalizeEmail(in.Email)

	v := apperr.NewValidationError()
	if validation.Required("username", in.Username, v) {
		validation.MaxLength("username", in.Username, MaxUsernameLength, v)
		if !usernamePattern.MatchString(in.Username) {
			v.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
		}
	}
	if validation.Required("email", in.Email, v) {
		validation.MaxLength("email", in.Email, MaxEmailLength, v)
		validation.Email("email", in.Email, v)
	}
	if validation.Required("password", in.Password, v) {
		for _, msg := range auth.ValidatePassword(in.Password, in.Username, in.Email) {
			v.Add("password", msg)
		}
	}

	if !v.Has("email") {
		taken, err := s.repo.EmailExists(ctx, in.Email)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			v.Add("email", msgEmailTaken)
		}
	}
	if !v.Has("username") {
		taken, err := s.repo.UsernameExists(ctx, in.Username)
		if err != nil {
			return nil, fmt.Errorf("check username: %w", err)
		}
		if taken {
			v.Add("username", msgUsernameTaken)
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	a := &Account{
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hashed,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		// Lost a race with a concurrent registration.
		if apperr.IsDuplicate(err) {
			if db.ConstraintName(err) == "account_username_key" {
				return nil, apperr.FieldError("username", msgUsernameTaken)
			}
			return nil, apperr.FieldError("email", msgEmailTaken)
		}
		return nil, err
	}

	s.logger.Info().Str("account_id", a.ID.String()).Msg("account registered")
	return a, nil
}

// Authenticate checks the credentials and issues a token pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (auth.TokenPair, error) {
	a, err := s.repo.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		if !apperr.IsNotFound(err) {
			return auth.TokenPair{}, fmt.Errorf("lookup account: %w", err)
		}
		auth.CheckPassword(password, dummyHash)
		return auth.TokenPair{}, apperr.Newf(apperr.ErrUnauthorized, msgBadCredentials)
	}
	if !auth.CheckPassword(password, a.PasswordHash) || !a.IsActive {
		return auth.TokenPair{}, apperr.Newf(apperr.ErrUnauthorized, msgBadCredentials)
	}

	pair, err := s.tokens.IssuePair(a.ID, a.Email)
	if err != nil {
		return auth.TokenPair{}, err
	}
	if err := s.repo.TouchLastLogin(ctx, a.ID, s.now()); err != nil {
		s.logger.Warn().Err(err).Str("account_id", a.ID.String()).Msg("update last login")
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a new access token. The account must
// still exist and be active.
// ActiveAccount reports whether id names an existing, active account.
func (s *Service) ActiveAccount(ctx context.Context, id uuid.UUID) (bool, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup account: %w", err)
	}
	return a.IsActive, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Parse(refreshToken, auth.RefreshToken)
	if err != nil {
		return "", err
	}
	// Parse guarantees a well-formed subject.
	id, _ := uuid.Parse(claims.Subject)

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", apperr.Newf(apperr.ErrUnauthorized, "user not found")
		}
		return "", fmt.Errorf("lookup account: %w", err)
	}
	if !a.IsActive {
		return "", apperr.Newf(apperr.ErrUnauthorized, "user is inactive")
	}
	return s.tokens.IssueAccess(a.ID, a.Email)
}
