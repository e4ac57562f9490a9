package lifecycle

import (
	"errors"
	"strings"

	"github.com/GehirnInc/crypt"
	"github.com/GehirnInc/crypt/md5_crypt"
	"github.com/GehirnInc/crypt/sha256_crypt"
	"github.com/GehirnInc/crypt/sha512_crypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account is locked")
	ErrUnsupportedHash    = errors.New("unsupported password hash")
)

// HashLocked reports whether a shadow hash denies password login: the
// empty hash, "*", or any "!"-prefixed value.
func HashLocked(hash string) bool {
	return hash == "" || hash == "*" || strings.HasPrefix(hash, "!") || strings.HasPrefix(hash, "*")
}

// LockHash disables password login while preserving the old hash, the
// way `usermod -L` does.
func LockHash(hash string) string {
	if strings.HasPrefix(hash, "!") {
		return hash
	}
	return "!" + hash
}

func UnlockHash(hash string) string {
	return strings.TrimPrefix(hash, "!")
}

// VerifyHash checks a cleartext candidate against an existing opaque
// hash. Hash generation is out of scope here; only the crypt formats
// the GehirnInc crypters cover are verifiable ($1$, $5$, $6$).
func VerifyHash(hash, password string) error {
	if HashLocked(hash) {
		return ErrAccountLocked
	}
	crypters := []crypt.Crypter{sha512_crypt.New(), sha256_crypt.New(), md5_crypt.New()}
	for _, c := range crypters {
		if err := c.Verify(hash, []byte(password)); err == nil {
			return nil
		}
	}
	// yescrypt and bcrypt hashes exist in the wild but have no crypter.
	if strings.HasPrefix(hash, "$y$") || strings.HasPrefix(hash, "$7$") || strings.HasPrefix(hash, "$2") {
		return ErrUnsupportedHash
	}
	return ErrInvalidCredentials
}

// VerifyPassword takes a consistent snapshot and checks the candidate
// against the user's shadow hash.
func (m *Manager) VerifyPassword(name, password string) error {
	tx, err := m.begin()
	if err != nil {
		return err
	}
	defer tx.Close()
	s, ok := tx.DB().Shadow(name)
	if !ok {
		return ErrInvalidCredentials
	}
	return VerifyHash(s.Hash, password)
}
