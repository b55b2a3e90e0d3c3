package commitment

import (
	"crypto/rand"
	"crypto/subtle"

	"github.com/zeebo/blake3"
)

const saltSize = 32

// domain is mixed into every commitment hash so that a commitment computed
// here can never collide with a differently-domained BLAKE3 hash elsewhere
// in this module (e.g. a Fiat-Shamir challenge in pkg/zk).
const domain = "kms-secp256k1/commitment/v1"

// Commitment is the published, hiding half of a commit/decommit pair.
type Commitment struct {
	C []byte // hash(domain, salt, parts...)
}

// Decommitment is the later-revealed half.
type Decommitment struct {
	Salt []byte
}

// Commit hashes parts together with a fresh random salt and returns the
// commitment to publish plus the decommitment to keep secret until reveal
// time.
func Commit(parts ...[]byte) (*Commitment, *Decommitment, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, err
	}
	c := hash(salt, parts...)
	return &Commitment{C: c}, &Decommitment{Salt: salt}, nil
}

// Verify recomputes the commitment from the decommitment and the revealed
// parts and reports whether it matches c.
func Verify(c *Commitment, d *Decommitment, parts ...[]byte) bool {
	if c == nil || d == nil {
		return false
	}
	got := hash(d.Salt, parts...)
	return subtle.ConstantTimeCompare(got, c.C) == 1
}

func hash(salt []byte, parts ...[]byte) []byte {
	h := blake3.New()
	_, _ = h.Write([]byte(domain))
	_, _ = h.Write(salt)
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	return h.Sum(nil)
}
