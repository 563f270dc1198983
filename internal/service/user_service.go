package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"forum-account/internal/domain"
	"forum-account/internal/email"
	"forum-account/internal/repository"
)

// UserService coordina reglas de negocio para cuentas de usuario.
type UserService struct {
	logger       *zap.Logger
	users        repository.UserRepository
	posts        repository.AuthorNameRepository
	comments     repository.AuthorNameRepository
	hasher       PasswordHasher
	emailSender  email.Sender
	resetLimiter ResetRateLimiter

	cascadeRetries   uint64
	cascadeBaseDelay time.Duration
}

func NewUserService(
	logger *zap.Logger,
	users repository.UserRepository,
	posts repository.AuthorNameRepository,
	comments repository.AuthorNameRepository,
	hasher PasswordHasher,
	emailSender email.Sender,
	resetLimiter ResetRateLimiter,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hasher == nil {
		hasher = NewBcryptHasher(DefaultBcryptCost)
	}
	if resetLimiter == nil {
		resetLimiter = NewMemoryRateLimiter(10*time.Minute, 3)
	}
	return &UserService{
		logger:           logger,
		users:            users,
		posts:            posts,
		comments:         comments,
		hasher:           hasher,
		emailSender:      emailSender,
		resetLimiter:     resetLimiter,
		cascadeRetries:   3,
		cascadeBaseDelay: 50 * time.Millisecond,
	}
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmptyNameOrEmail   = errors.New("name or email should not be empty")
	ErrEmailOrNameUsed    = errors.New("the email or name has been used")
	ErrEmptyPassword      = errors.New("password should not be empty")
	ErrEmptyName          = errors.New("name should not be empty")
	ErrNameTaken          = errors.New("name is not available")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailSendFailure   = errors.New("email send failed")
	ErrRateLimited        = errors.New("rate limited")
)

type RegisterInput struct {
	Name  string
	Email string
}

// UpdateInput lleva los campos opcionales de PUT /user; nil significa
// "no enviado".
type UpdateInput struct {
	Name     *string
	Password *string
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// Register crea la cuenta con una clave temporal y la envia por correo.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	name := strings.TrimSpace(input.Name)
	emailAddr := normalizeEmail(input.Email)
	if name == "" || emailAddr == "" {
		return domain.User{}, ErrEmptyNameOrEmail
	}

	tempPassword, err := GenerateTempPassword()
	if err != nil {
		return domain.User{}, fmt.Errorf("generate temp password: %w", err)
	}
	passwordHash, err := s.hasher.Hash(tempPassword)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	if taken, err := s.exists(ctx, s.users.GetByEmail, emailAddr); err != nil {
		return domain.User{}, err
	} else if taken {
		return domain.User{}, ErrEmailOrNameUsed
	}
	if taken, err := s.exists(ctx, s.users.GetByName, name); err != nil {
		return domain.User{}, err
	} else if taken {
		return domain.User{}, ErrEmailOrNameUsed
	}

	user, err := s.users.Create(ctx, domain.User{
		Name:         name,
		Email:        emailAddr,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.User{}, ErrEmailOrNameUsed
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	if err := s.send(func(sender email.Sender) error {
		return sender.SendRegister(ctx, user.Name, user.Email, tempPassword)
	}); err != nil {
		s.logger.Warn("send register email failed", zap.Error(err), zap.String("user_id", user.ID))
		return domain.User{}, ErrEmailSendFailure
	}

	return user, nil
}

// Authenticate no distingue email desconocido de clave incorrecta.
func (s *UserService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, fmt.Errorf("get user by email: %w", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// UpdateProfile cambia nombre y/o clave del usuario autenticado. Un cambio
// de nombre se propaga a posts y comments antes de responder.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	var update domain.UserUpdate
	if input.Password != nil {
		if strings.TrimSpace(*input.Password) == "" {
			return domain.User{}, ErrEmptyPassword
		}
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return domain.User{}, fmt.Errorf("hash password: %w", err)
		}
		update.PasswordHash = &hash
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return domain.User{}, ErrEmptyName
		}
		owner, err := s.users.GetByName(ctx, name)
		switch {
		case err == nil && owner.ID != userID:
			return domain.User{}, ErrNameTaken
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return domain.User{}, fmt.Errorf("get user by name: %w", err)
		}
		update.Name = &name
	}

	if update.IsEmpty() {
		return s.GetProfile(ctx, userID)
	}

	user, err := s.users.UpdateByID(ctx, userID, update)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return domain.User{}, ErrUserNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return domain.User{}, ErrNameTaken
		}
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}

	if update.Name != nil {
		if err := s.propagateName(ctx, user.ID, user.Name); err != nil {
			s.logger.Error("propagate author name failed",
				zap.Error(err),
				zap.String("user_id", user.ID),
				zap.String("name", user.Name),
			)
			return domain.User{}, fmt.Errorf("propagate author name: %w", err)
		}
	}

	if update.PasswordHash != nil {
		if err := s.send(func(sender email.Sender) error {
			return sender.SendPasswordSet(ctx, user.Name, user.Email)
		}); err != nil {
			s.logger.Warn("send password set email failed", zap.Error(err), zap.String("user_id", user.ID))
		}
	}

	return user, nil
}

// ForgotPassword reemplaza la clave por una temporal y la envia por correo.
func (s *UserService) ForgotPassword(ctx context.Context, emailAddr string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return domain.User{}, ErrUserNotFound
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user by email: %w", err)
	}
	// Solo cuentan los reseteos de cuentas existentes.
	if s.resetLimiter != nil && !s.resetLimiter.Allow(ctx, user.Email) {
		return domain.User{}, ErrRateLimited
	}

	tempPassword, err := GenerateTempPassword()
	if err != nil {
		return domain.User{}, fmt.Errorf("generate temp password: %w", err)
	}
	hash, err := s.hasher.Hash(tempPassword)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	updated, err := s.users.UpdateByID(ctx, user.ID, domain.UserUpdate{PasswordHash: &hash})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("update password: %w", err)
	}

	if err := s.send(func(sender email.Sender) error {
		return sender.SendForgotPassword(ctx, updated.Name, updated.Email, tempPassword)
	}); err != nil {
		s.logger.Warn("send forgot password email failed", zap.Error(err), zap.String("user_id", updated.ID))
		return domain.User{}, ErrEmailSendFailure
	}

	return updated, nil
}

// propagateName reintenta con backoff exponencial; la operacion es
// idempotente porque solo asigna el nombre actual.
func (s *UserService) propagateName(ctx context.Context, userID, name string) error {
	backoff := retry.WithMaxRetries(s.cascadeRetries, retry.NewExponential(s.cascadeBaseDelay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		for _, repo := range []repository.AuthorNameRepository{s.posts, s.comments} {
			if repo == nil {
				continue
			}
			if _, err := repo.UpdateAuthorName(ctx, userID, name); err != nil {
				s.logger.Warn("update author name failed, retrying", zap.Error(err), zap.String("user_id", userID))
				return retry.RetryableError(err)
			}
		}
		return nil
	})
}

func (s *UserService) exists(ctx context.Context, lookup func(context.Context, string) (domain.User, error), key string) (bool, error) {
	_, err := lookup(ctx, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("lookup user: %w", err)
}

func (s *UserService) send(fn func(email.Sender) error) error {
	if s.emailSender == nil {
		return errors.New("email sender not configured")
	}
	return fn(s.emailSender)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
