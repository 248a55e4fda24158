package service

import (
	"context"
	"fmt"
	"time"

	"reviewhub/internal/apperr"
	"reviewhub/internal/auth"
	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/repository"
	"reviewhub/internal/mailer"
	"reviewhub/internal/pkg/logger"
)

type AuthService interface {
	Signup(ctx context.Context, username, email string) (*models.User, error)
	IssueToken(ctx context.Context, username, code string) (string, error)
}

type authService struct {
	userRepo repository.UserRepository
	codes    *auth.CodeGenerator
	tokens   *auth.TokenIssuer
	mail     mailer.Mailer
	log      *logger.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	codes *auth.CodeGenerator,
	tokens *auth.TokenIssuer,
	mail mailer.Mailer,
	log *logger.Logger,
) AuthService {
	return &authService{
		userRepo: userRepo,
		codes:    codes,
		tokens:   tokens,
		mail:     mail,
		log:      log,
	}
}

// Signup creates (or reuses) a pending user and emails a confirmation
// code. Re-signing up with the same (username, email) pair re-sends a
// fresh code for the existing record; either field colliding with a
// different account is a conflict. A delivery failure still returns the
// error, but the record is kept so the client can retry token issuance
// once delivery works: the code derivation is deterministic.
func (s *authService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	if err := models.ValidateUsername(username); err != nil {
		return nil, apperr.Validation("username", err.Error())
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		if user.Email != email {
			return nil, apperr.Conflict("username", fmt.Sprintf("username %q is already taken", username))
		}
		// Same identity signing up again: resend a code.
	case repository.IsNotFound(err):
		if existing, err := s.userRepo.FindByEmail(ctx, email); err == nil && existing != nil {
			return nil, apperr.Conflict("email", fmt.Sprintf("a user with email %q already exists", email))
		} else if err != nil && !repository.IsNotFound(err) {
			return nil, apperr.Internal(err)
		}
		user = &models.User{Username: username, Email: email, Role: models.RoleUser}
		if err := s.userRepo.Create(ctx, user); err != nil {
			if repository.IsUniqueViolation(err) {
				return nil, apperr.Conflict("email", fmt.Sprintf("a user with email %q already exists", email))
			}
			return nil, apperr.Internal(err)
		}
	default:
		return nil, apperr.Internal(err)
	}

	code := s.codes.IssueCode(user)
	body := fmt.Sprintf("%s your confirmation_code: %s", user.Username, code)
	if err := s.mail.Send(ctx, user.Email, "confirmation_code", body); err != nil {
		s.log.Error("confirmation code delivery failed", "username", user.Username, "error", err)
		return user, err
	}
	return user, nil
}

// IssueToken exchanges a confirmation code for an access token. Clearing
// the password and bumping last_login changes the code's digest inputs,
// which is what makes a code single-use.
func (s *authService) IssueToken(ctx context.Context, username, code string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", apperr.NotFound(fmt.Sprintf("user %q not found", username))
		}
		return "", apperr.Internal(err)
	}

	if !s.codes.VerifyCode(user, code) {
		return "", apperr.InvalidCredentials("invalid or expired confirmation_code")
	}

	now := time.Now().UTC()
	user.Password = ""
	user.LastLogin = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", apperr.Internal(err)
	}

	token, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return token, nil
}
