package users

import (
	"slices"
	"time"

	"gorm.io/gorm"

	"github.com/kbukum/forohub/auth"
)

// Role names seeded into the perfiles table.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// Profile is a role row.
type Profile struct {
	ID          uint64 `gorm:"primaryKey"`
	Nombre      string `gorm:"size:50;not null;uniqueIndex"`
	Descripcion string `gorm:"size:255"`
}

// TableName implements gorm's tabler.
func (Profile) TableName() string { return "perfiles" }

// User is an account row. Contrasena holds the secret digest.
type User struct {
	ID            uint64    `gorm:"primaryKey"`
	Nombre        string    `gorm:"size:100;not null"`
	Email         string    `gorm:"size:100;not null;uniqueIndex"`
	Contrasena    string    `gorm:"size:255;not null"`
	Activo        bool      `gorm:"not null"`
	FechaCreacion time.Time `gorm:"column:fecha_creacion;not null"`
	Perfiles      []Profile `gorm:"many2many:usuarios_perfiles;joinForeignKey:usuario_id;joinReferences:perfil_id"`
}

// TableName implements gorm's tabler.
func (User) TableName() string { return "usuarios" }

// BeforeCreate stamps the creation time if unset.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.FechaCreacion.IsZero() {
		u.FechaCreacion = time.Now().UTC()
	}
	return nil
}

// RoleNames returns the profile names, sorted.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Perfiles))
	for _, p := range u.Perfiles {
		names = append(names, p.Nombre)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// Identity maps the row onto the auth core's view of an account.
func (u *User) Identity() *auth.Identity {
	return &auth.Identity{
		ID:         u.ID,
		Login:      u.Email,
		SecretHash: u.Contrasena,
		Enabled:    u.Activo,
		Roles:      u.RoleNames(),
	}
}

// Detail is the public JSON view of an account. It never carries the digest.
type Detail struct {
	ID            uint64    `json:"id"`
	Nombre        string    `json:"nombre"`
	Email         string    `json:"email"`
	Activo        bool      `json:"activo"`
	FechaCreacion time.Time `json:"fecha_creacion"`
	Perfiles      []string  `json:"perfiles"`
}

// Detail returns the public view of u.
func (u *User) Detail() Detail {
	return Detail{
		ID:            u.ID,
		Nombre:        u.Nombre,
		Email:         u.Email,
		Activo:        u.Activo,
		FechaCreacion: u.FechaCreacion,
		Perfiles:      u.RoleNames(),
	}
}

// Models lists the tables to auto-migrate.
func Models() []interface{} {
	return []interface{}{&Profile{}, &User{}}
}
