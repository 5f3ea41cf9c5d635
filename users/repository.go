package users

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kbukum/forohub/auth"
	"github.com/kbukum/forohub/database"
)

var (
	// ErrUserNotFound is returned when no account has the requested id.
	ErrUserNotFound = errors.New("users: user not found")
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("users: email already registered")
	// ErrProfileNotFound is returned when a role to grant has not been seeded.
	ErrProfileNotFound = errors.New("users: profile not found")
)

var _ auth.CredentialStore = (*Repository)(nil)

// Repository reads and writes accounts through gorm.
type Repository struct {
	db *database.DB
}

// NewRepository creates a repository over db.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// FindByLogin returns the identity registered under email, roles loaded.
func (r *Repository) FindByLogin(ctx context.Context, login string) (*auth.Identity, error) {
	var u User
	err := r.db.WithContext(ctx).Preload("Perfiles").Where("email = ?", login).First(&u).Error
	if database.IsNotFoundError(err) {
		return nil, auth.ErrIdentityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("users: find by login: %w", err)
	}
	return u.Identity(), nil
}

// ExistsByLogin reports whether an account is registered under email.
func (r *Repository) ExistsByLogin(ctx context.Context, login string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&User{}).Where("email = ?", login).Count(&count).Error; err != nil {
		return false, fmt.Errorf("users: exists by login: %w", err)
	}
	return count > 0, nil
}

// FindByID returns the account with id, roles loaded.
func (r *Repository) FindByID(ctx context.Context, id uint64) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Preload("Perfiles").First(&u, id).Error
	if database.IsNotFoundError(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("users: find by id: %w", err)
	}
	return &u, nil
}

// Create inserts u granted the named roles, all of which must exist.
func (r *Repository) Create(ctx context.Context, u *User, roles ...string) error {
	return r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		profiles, err := findProfiles(tx, roles)
		if err != nil {
			return err
		}
		u.Perfiles = profiles
		if err := tx.Create(u).Error; err != nil {
			if database.IsDuplicateError(err) {
				return ErrDuplicateEmail
			}
			return fmt.Errorf("users: create: %w", err)
		}
		return nil
	})
}

// SetEnabled updates the activo flag of account id.
func (r *Repository) SetEnabled(ctx context.Context, id uint64, enabled bool) error {
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("activo", enabled)
	if res.Error != nil {
		return fmt.Errorf("users: set enabled: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Grant adds role to account id if it is not already granted.
func (r *Repository) Grant(ctx context.Context, id uint64, role string) error {
	return r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		profiles, err := findProfiles(tx, []string{role})
		if err != nil {
			return err
		}
		var u User
		if err := tx.First(&u, id).Error; err != nil {
			if database.IsNotFoundError(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("users: grant %s: %w", role, err)
		}
		if err := tx.Model(&u).Association("Perfiles").Append(profiles); err != nil {
			return fmt.Errorf("users: grant %s: %w", role, err)
		}
		return nil
	})
}

func findProfiles(tx *gorm.DB, names []string) ([]Profile, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var profiles []Profile
	if err := tx.Where("nombre IN ?", names).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("users: load profiles: %w", err)
	}
	if len(profiles) != len(names) {
		return nil, fmt.Errorf("%w: %v", ErrProfileNotFound, names)
	}
	return profiles, nil
}

// SeedProfiles creates the built-in roles if they are missing.
func SeedProfiles(ctx context.Context, db *database.DB) error {
	profiles := []Profile{
		{Nombre: RoleUser, Descripcion: "Forum member"},
		{Nombre: RoleAdmin, Descripcion: "Forum administrator"},
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "nombre"}}, DoNothing: true}).
		Create(&profiles).Error
	if err != nil {
		return fmt.Errorf("users: seed profiles: %w", err)
	}
	return nil
}
