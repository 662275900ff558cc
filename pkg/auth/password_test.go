package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/diagnosis/shelter-loyalty/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const staffPassword = "Sh3lter-Front-Desk"

var cheapArgon = &argon2id.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func checkers(t *testing.T) map[Scheme]*PasswordChecker {
	t.Helper()

	argonHash, err := argon2id.CreateHash(staffPassword, cheapArgon)
	require.NoError(t, err)
	bcryptHash, err := bcrypt.GenerateFromPassword([]byte(staffPassword), bcrypt.MinCost)
	require.NoError(t, err)

	out := map[Scheme]*PasswordChecker{}
	for scheme, cfg := range map[Scheme]config.AuthConfig{
		SchemeArgon2id: {PasswordHash: argonHash},
		SchemeBcrypt:   {PasswordHash: string(bcryptHash)},
		SchemeSHA256:   {PasswordSHA256: sha256Hex(staffPassword)},
	} {
		c, err := NewPasswordChecker(cfg)
		require.NoError(t, err)
		require.Equal(t, scheme, c.Scheme())
		out[scheme] = c
	}
	return out
}

func TestVerify_AcceptsExactAndPaddedPassword(t *testing.T) {
	ctx := context.Background()
	for scheme, c := range checkers(t) {
		t.Run(string(scheme), func(t *testing.T) {
			assert.NoError(t, c.Verify(ctx, staffPassword))
			assert.NoError(t, c.Verify(ctx, "  "+staffPassword+"\n"))
			assert.NoError(t, c.Verify(ctx, staffPassword+"\t"))
		})
	}
}

func TestVerify_RejectsSingleCharacterMutations(t *testing.T) {
	ctx := context.Background()
	c := checkers(t)[SchemeSHA256]

	for i := range staffPassword {
		b := []byte(staffPassword)
		b[i] ^= 0x01
		assert.ErrorIs(t, c.Verify(ctx, string(b)), ErrInvalidPassword, "mutation at %d", i)
	}
	assert.ErrorIs(t, c.Verify(ctx, staffPassword[:len(staffPassword)-1]), ErrInvalidPassword)
	assert.ErrorIs(t, c.Verify(ctx, staffPassword+"x"), ErrInvalidPassword)
}

func TestVerify_HashSchemesRejectWrongPassword(t *testing.T) {
	ctx := context.Background()
	for scheme, c := range checkers(t) {
		t.Run(string(scheme), func(t *testing.T) {
			assert.ErrorIs(t, c.Verify(ctx, "sh3lter-Front-Desk"), ErrInvalidPassword)
		})
	}
}

func TestVerify_EmptyCandidate(t *testing.T) {
	c := checkers(t)[SchemeSHA256]
	assert.ErrorIs(t, c.Verify(context.Background(), ""), ErrPasswordRequired)
	assert.ErrorIs(t, c.Verify(context.Background(), "   "), ErrPasswordRequired)
}

func TestVerify_DisabledBypasses(t *testing.T) {
	c, err := NewPasswordChecker(config.AuthConfig{Disabled: true})
	require.NoError(t, err)
	assert.True(t, c.Disabled())
	assert.NoError(t, c.Verify(context.Background(), ""))
	assert.NoError(t, c.Verify(context.Background(), "anything"))
}

func TestNewPasswordChecker_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.AuthConfig
	}{
		{"nothing configured", config.AuthConfig{}},
		{"two secrets", config.AuthConfig{PasswordHash: "$2a$10$x", PasswordSHA256: sha256Hex("x")}},
		{"short digest", config.AuthConfig{PasswordSHA256: "abcd"}},
		{"non hex digest", config.AuthConfig{PasswordSHA256: "zz" + sha256Hex("x")[2:]}},
		{"plaintext as hash", config.AuthConfig{PasswordHash: "letmein"}},
		{"broken argon hash", config.AuthConfig{PasswordHash: "$argon2id$v=19$broken"}},
		{"disabled with secret", config.AuthConfig{Disabled: true, PasswordSHA256: sha256Hex("x")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPasswordChecker(tt.cfg)
			assert.ErrorIs(t, err, ErrAuthConfig)
		})
	}
}

func TestHashPassword_RoundTrip(t *testing.T) {
	for _, scheme := range []Scheme{SchemeSHA256, SchemeBcrypt} {
		t.Run(string(scheme), func(t *testing.T) {
			value, err := HashPassword(scheme, staffPassword)
			require.NoError(t, err)

			cfg := config.AuthConfig{PasswordHash: value}
			if scheme == SchemeSHA256 {
				cfg = config.AuthConfig{PasswordSHA256: value}
			}
			c, err := NewPasswordChecker(cfg)
			require.NoError(t, err)
			assert.NoError(t, c.Verify(context.Background(), staffPassword))
		})
	}

	_, err := HashPassword("md5", staffPassword)
	assert.Error(t, err)
}

// Compares the median verification time of a first-byte mismatch against a last-byte
// mismatch. Only a gross difference fails; the assertion is statistical.
func TestVerify_TimingIndependentOfMismatchPosition(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}
	ctx := context.Background()
	c := checkers(t)[SchemeSHA256]

	early := []byte(staffPassword)
	early[0] ^= 0x01
	late := []byte(staffPassword)
	late[len(late)-1] ^= 0x01

	median := func(candidate string) time.Duration {
		const rounds = 2000
		samples := make([]time.Duration, rounds)
		for i := range samples {
			start := time.Now()
			_ = c.Verify(ctx, candidate)
			samples[i] = time.Since(start)
		}
		sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
		return samples[rounds/2]
	}

	a, b := median(string(early)), median(string(late))
	if a < b {
		a, b = b, a
	}
	if b == 0 {
		b = 1
	}
	assert.Less(t, float64(a)/float64(b), 3.0, "early=%v late=%v", a, b)
}
