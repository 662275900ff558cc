package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"github.com/diagnosis/shelter-loyalty/pkg/config"
	"github.com/diagnosis/shelter-loyalty/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAuthConfig       = errors.New("auth: invalid staff password configuration")
	ErrPasswordRequired = errors.New("password is required")
	ErrInvalidPassword  = errors.New("incorrect password")
)

type Scheme string

const (
	SchemeDisabled Scheme = "disabled"
	SchemeArgon2id Scheme = "argon2id"
	SchemeBcrypt   Scheme = "bcrypt"
	SchemeSHA256   Scheme = "sha256"
)

// PasswordChecker verifies the shared staff password against the single configured secret.
type PasswordChecker struct {
	scheme Scheme
	hash   string
	digest []byte
}

func NewPasswordChecker(cfg config.AuthConfig) (*PasswordChecker, error) {
	if cfg.Disabled {
		if cfg.PasswordHash != "" || cfg.PasswordSHA256 != "" {
			return nil, fmt.Errorf("%w: disabled flag combined with a secret", ErrAuthConfig)
		}
		return &PasswordChecker{scheme: SchemeDisabled}, nil
	}

	switch {
	case cfg.PasswordHash != "" && cfg.PasswordSHA256 != "":
		return nil, fmt.Errorf("%w: more than one secret configured", ErrAuthConfig)
	case cfg.PasswordHash != "":
		return newHashChecker(cfg.PasswordHash)
	case cfg.PasswordSHA256 != "":
		digest, err := hex.DecodeString(strings.ToLower(cfg.PasswordSHA256))
		if err != nil || len(digest) != sha256.Size {
			return nil, fmt.Errorf("%w: sha256 digest must be %d hex characters", ErrAuthConfig, sha256.Size*2)
		}
		return &PasswordChecker{scheme: SchemeSHA256, digest: digest}, nil
	default:
		return nil, fmt.Errorf("%w: no secret configured", ErrAuthConfig)
	}
}

func newHashChecker(hash string) (*PasswordChecker, error) {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		if _, _, _, err := argon2id.DecodeHash(hash); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAuthConfig, err)
		}
		return &PasswordChecker{scheme: SchemeArgon2id, hash: hash}, nil
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAuthConfig, err)
		}
		return &PasswordChecker{scheme: SchemeBcrypt, hash: hash}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported password hash format", ErrAuthConfig)
	}
}

func (c *PasswordChecker) Scheme() Scheme { return c.scheme }

func (c *PasswordChecker) Disabled() bool { return c.scheme == SchemeDisabled }

// Verify checks candidate and, when it differs, its whitespace-trimmed form. Every
// candidate is evaluated; results are combined without branching on the first match.
func (c *PasswordChecker) Verify(ctx context.Context, candidate string) error {
	if c.Disabled() {
		logger.WarnContext(ctx, "staff authentication disabled; password check bypassed")
		return nil
	}

	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ErrPasswordRequired
	}

	candidates := []string{candidate}
	if trimmed != candidate {
		candidates = append(candidates, trimmed)
	}

	matched := 0
	for _, p := range candidates {
		matched |= c.match(p)
	}
	if matched != 1 {
		return ErrInvalidPassword
	}
	return nil
}

func (c *PasswordChecker) match(password string) int {
	switch c.scheme {
	case SchemeSHA256:
		sum := sha256.Sum256([]byte(password))
		return subtle.ConstantTimeCompare(sum[:], c.digest)
	case SchemeArgon2id:
		ok, err := argon2id.ComparePasswordAndHash(password, c.hash)
		if err != nil || !ok {
			return 0
		}
		return 1
	case SchemeBcrypt:
		if bcrypt.CompareHashAndPassword([]byte(c.hash), []byte(password)) != nil {
			return 0
		}
		return 1
	default:
		return 0
	}
}

// HashPassword produces a configuration value for the given scheme.
func HashPassword(scheme Scheme, password string) (string, error) {
	if password == "" {
		return "", ErrPasswordRequired
	}
	switch scheme {
	case SchemeArgon2id:
		return argon2id.CreateHash(password, argon2id.DefaultParams)
	case SchemeBcrypt:
		b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case SchemeSHA256:
		sum := sha256.Sum256([]byte(password))
		return hex.EncodeToString(sum[:]), nil
	default:
		return "", fmt.Errorf("unsupported scheme %q", scheme)
	}
}
