package password

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/kbukum/forohub/auth"
)

type Algorithm string

const (
	// AlgorithmBcrypt reads and writes the $2a$ digests already stored for accounts.
	AlgorithmBcrypt Algorithm = "bcrypt"
	// AlgorithmArgon2id writes PHC-encoded argon2id digests.
	AlgorithmArgon2id Algorithm = "argon2id"
)

// Argon2Config holds the argon2id cost parameters. Memory is in KiB.
type Argon2Config struct {
	Time    uint32 `yaml:"time" mapstructure:"time"`
	Memory  uint32 `yaml:"memory" mapstructure:"memory"`
	Threads uint8  `yaml:"threads" mapstructure:"threads"`
}

// Config is auth.password. Algorithm only decides how new digests are
// written; both formats are always accepted on verify.
type Config struct {
	Algorithm  Algorithm    `yaml:"algorithm" mapstructure:"algorithm"`
	BcryptCost int          `yaml:"bcrypt_cost" mapstructure:"bcrypt_cost"`
	Argon2     Argon2Config `yaml:"argon2" mapstructure:"argon2"`
	// MinLength applies at registration and to the seeded admin.
	MinLength int `yaml:"min_length" mapstructure:"min_length"`
}

func (c *Config) ApplyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmBcrypt
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
	if c.MinLength == 0 {
		c.MinLength = 8
	}
	a := &c.Argon2
	if a.Time == 0 {
		a.Time = 1
	}
	if a.Memory == 0 {
		a.Memory = 64 * 1024
	}
	if a.Threads == 0 {
		a.Threads = 4
	}
}

func (c *Config) Validate() error {
	if c.Algorithm != AlgorithmBcrypt && c.Algorithm != AlgorithmArgon2id {
		return fmt.Errorf("algorithm: %q is not bcrypt or argon2id", c.Algorithm)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt_cost: %d is outside %d..%d", c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	// argon2 needs at least 8 KiB per lane.
	if c.Argon2.Memory < 8*uint32(c.Argon2.Threads) {
		return fmt.Errorf("argon2.memory: %d KiB is too small for %d threads", c.Argon2.Memory, c.Argon2.Threads)
	}
	if c.MinLength < 1 {
		return fmt.Errorf("min_length: must be at least 1, got %d", c.MinLength)
	}
	return nil
}

// Hasher writes digests with the configured algorithm and verifies any
// digest it recognizes by prefix.
type Hasher struct {
	primary Algorithm
	bcrypt  *BcryptHasher
	argon2  *Argon2Hasher
}

// NewHasher builds the Hasher for cfg, filling unset fields with defaults.
func NewHasher(cfg Config) *Hasher {
	cfg.ApplyDefaults()
	return &Hasher{
		primary: cfg.Algorithm,
		bcrypt:  NewBcryptHasher(WithCost(cfg.BcryptCost)),
		argon2: NewArgon2Hasher(
			WithArgon2Time(cfg.Argon2.Time),
			WithArgon2Memory(cfg.Argon2.Memory),
			WithArgon2Threads(cfg.Argon2.Threads),
		),
	}
}

// Algorithm reports what Hash writes.
func (h *Hasher) Algorithm() Algorithm {
	return h.primary
}

func (h *Hasher) Hash(secret string) (string, error) {
	if h.primary == AlgorithmArgon2id {
		return h.argon2.Hash(secret)
	}
	return h.bcrypt.Hash(secret)
}

func (h *Hasher) Verify(secret, digest string) error {
	switch {
	case strings.HasPrefix(digest, "$argon2id$"):
		return h.argon2.Verify(secret, digest)
	case strings.HasPrefix(digest, "$2"):
		return h.bcrypt.Verify(secret, digest)
	default:
		return ErrMalformedHash
	}
}

var (
	_ auth.SecretHasher = (*Hasher)(nil)
	_ auth.SecretHasher = (*BcryptHasher)(nil)
	_ auth.SecretHasher = (*Argon2Hasher)(nil)
)
