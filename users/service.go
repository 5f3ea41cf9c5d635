package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kbukum/forohub/auth"
	apperrors "github.com/kbukum/forohub/errors"
	"github.com/kbukum/forohub/logger"
	"github.com/kbukum/forohub/validation"
)

// RegisterInput is the registration request.
type RegisterInput struct {
	Nombre     string `json:"nombre" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email,max=100"`
	Contrasena string `json:"contrasena" validate:"required,max=72"`
}

// MaxSecretBytes is bcrypt's input limit. It is checked in bytes: a 40
// character secret of "ñ" is 80 bytes.
const MaxSecretBytes = 72

// Service implements the account operations around the auth core.
type Service struct {
	repo      *Repository
	hasher    auth.SecretHasher
	log       *logger.Logger
	minLength int
}

// NewService creates a Service. minLength is the shortest secret accepted
// at registration.
func NewService(repo *Repository, hasher auth.SecretHasher, minLength int, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		repo:      repo,
		hasher:    hasher,
		log:       log.WithComponent("users"),
		minLength: minLength,
	}
}

// Register creates an enabled account granted ROLE_USER.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if msg := s.checkSecret(in.Contrasena); msg != "" {
		return nil, apperrors.Validation("contrasena "+msg).
			WithDetail("fields", []validation.FieldError{{Field: "contrasena", Message: msg}})
	}

	exists, err := s.repo.ExistsByLogin(ctx, in.Email)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if exists {
		return nil, apperrors.AlreadyExists("user", "email")
	}

	digest, err := s.hasher.Hash(in.Contrasena)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	u := &User{
		Nombre:     strings.TrimSpace(in.Nombre),
		Email:      in.Email,
		Contrasena: digest,
		Activo:     true,
	}
	if err := s.repo.Create(ctx, u, RoleUser); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, apperrors.AlreadyExists("user", "email")
		}
		return nil, apperrors.DatabaseError(err)
	}

	s.log.WithContext(ctx).Info("user registered", logger.Fields(
		logger.FieldUserID, u.ID,
		logger.FieldLogin, u.Email,
	))
	return u, nil
}

// checkSecret returns why secret is unacceptable, or "" when it is fine.
func (s *Service) checkSecret(secret string) string {
	switch {
	case utf8.RuneCountInString(secret) < s.minLength:
		return fmt.Sprintf("must be at least %d characters", s.minLength)
	case len(secret) > MaxSecretBytes:
		return fmt.Sprintf("must be at most %d bytes", MaxSecretBytes)
	}
	return ""
}

// Get returns the account with id.
func (s *Service) Get(ctx context.Context, id uint64) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrUserNotFound) {
		return nil, apperrors.NotFound("user", strconv.FormatUint(id, 10))
	}
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return u, nil
}

// Block disables account id. The account keeps its data but can no longer
// log in, and its outstanding tokens stop authenticating.
func (s *Service) Block(ctx context.Context, id uint64) (*User, error) {
	return s.setEnabled(ctx, id, false)
}

// Unblock re-enables account id.
func (s *Service) Unblock(ctx context.Context, id uint64) (*User, error) {
	return s.setEnabled(ctx, id, true)
}

func (s *Service) setEnabled(ctx context.Context, id uint64, enabled bool) (*User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Activo == enabled {
		if enabled {
			return nil, apperrors.Conflict("The user is already active.")
		}
		return nil, apperrors.Conflict("The user is already blocked.")
	}

	if err := s.repo.SetEnabled(ctx, id, enabled); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperrors.NotFound("user", strconv.FormatUint(id, 10))
		}
		return nil, apperrors.DatabaseError(err)
	}
	u.Activo = enabled

	s.log.WithContext(ctx).Info("user enabled state changed", logger.Fields(
		logger.FieldUserID, id,
		"enabled", enabled,
	))
	return u, nil
}

// EnsureAdmin creates an administrator account if email is not registered
// yet, or grants ROLE_ADMIN to the existing account.
func (s *Service) EnsureAdmin(ctx context.Context, nombre, email, secret string) error {
	identity, err := s.repo.FindByLogin(ctx, email)
	switch {
	case err == nil:
		if identity.HasRole(RoleAdmin) {
			return nil
		}
		return s.repo.Grant(ctx, identity.ID, RoleAdmin)
	case !errors.Is(err, auth.ErrIdentityNotFound):
		return err
	}

	if msg := s.checkSecret(secret); msg != "" {
		return fmt.Errorf("users: admin secret %s", msg)
	}
	digest, err := s.hasher.Hash(secret)
	if err != nil {
		return fmt.Errorf("users: hash admin secret: %w", err)
	}
	u := &User{Nombre: nombre, Email: email, Contrasena: digest, Activo: true}
	if err := s.repo.Create(ctx, u, RoleUser, RoleAdmin); err != nil {
		return err
	}
	s.log.WithContext(ctx).Info("administrator created", logger.Fields(logger.FieldLogin, email))
	return nil
}
