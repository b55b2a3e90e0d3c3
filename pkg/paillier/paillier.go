package paillier

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/cronokirby/saferith"
)

// KeyBits is the modulus size this module generates. 2048 bits matches the
// security level the teacher's own Paillier wrapper documents for its
// cgo-backed keys.
const KeyBits = 2048

var (
	ErrOutOfRange  = errors.New("paillier: value out of range")
	ErrBadNonce    = errors.New("paillier: nonce must be coprime to N")
	ErrKeyMismatch = errors.New("paillier: ciphertext was not produced under this key")
)

// PublicKey is a Paillier encryption key: the modulus N, cached alongside
// N^2 for repeated ciphertext-domain arithmetic.
type PublicKey struct {
	n        *saferith.Nat
	nMod     *saferith.Modulus
	nSquared *saferith.Modulus
}

// PrivateKey additionally holds the factorization-derived decryption
// exponent lambda and its modular inverse mu mod N.
type PrivateKey struct {
	PublicKey
	lambda *saferith.Nat
	mu     *saferith.Nat
}

// Ciphertext is a Paillier ciphertext: an element of Z_{N^2}.
type Ciphertext struct {
	c *saferith.Nat
}

// NewPublicKeyFromN builds a PublicKey from a known modulus, for a party
// that only ever encrypts (or homomorphically combines) and never decrypts
// — e.g. P2 combining P1's c_key during signing.
func NewPublicKeyFromN(n *big.Int) *PublicKey {
	nNat := new(saferith.Nat).SetBig(n, n.BitLen())
	n2 := new(big.Int).Mul(n, n)
	return &PublicKey{
		n:        nNat,
		nMod:     saferith.ModulusFromNat(nNat),
		nSquared: saferith.ModulusFromNat(new(saferith.Nat).SetBig(n2, n2.BitLen())),
	}
}

// N returns the modulus as a big.Int, for serialization.
func (pk *PublicKey) N() *big.Int { return pk.n.Big() }

// MarshalBinary implements encoding.BinaryMarshaler, so a PublicKey can
// travel as a single CBOR field in a wire message.
func (pk *PublicKey) MarshalBinary() ([]byte, error) { return pk.N().Bytes(), nil }

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (pk *PublicKey) UnmarshalBinary(b []byte) error {
	*pk = *NewPublicKeyFromN(new(big.Int).SetBytes(b))
	return nil
}

// Generate samples two safe-ish random primes and returns the resulting
// Paillier keypair. Grounded in smallyunet-go-cggmp-tss's
// internal/crypto/paillier.GenerateKey, adapted to build on saferith's
// Nat/Modulus rather than raw math/big so the public key's later use in
// signing and rotation shares the same constant-width arithmetic path.
func Generate() (*PrivateKey, error) {
	p, err := rand.Prime(rand.Reader, KeyBits/2)
	if err != nil {
		return nil, err
	}
	q, err := rand.Prime(rand.Reader, KeyBits/2)
	if err != nil {
		return nil, err
	}
	for p.Cmp(q) == 0 {
		q, err = rand.Prime(rand.Reader, KeyBits/2)
		if err != nil {
			return nil, err
		}
	}

	n := new(big.Int).Mul(p, q)
	pMinus1 := new(big.Int).Sub(p, big.NewInt(1))
	qMinus1 := new(big.Int).Sub(q, big.NewInt(1))
	gcd := new(big.Int).GCD(nil, nil, pMinus1, qMinus1)
	lambda := new(big.Int).Mul(pMinus1, qMinus1)
	lambda.Div(lambda, gcd)
	mu := new(big.Int).ModInverse(lambda, n)
	if mu == nil {
		return nil, errors.New("paillier: failed to invert lambda mod n")
	}

	pub := NewPublicKeyFromN(n)
	return &PrivateKey{
		PublicKey: *pub,
		lambda:    new(saferith.Nat).SetBig(lambda, lambda.BitLen()),
		mu:        new(saferith.Nat).SetBig(mu, mu.BitLen()),
	}, nil
}

// Destroy overwrites the decryption exponent and its inverse, per the
// secret-handling discipline that every Paillier decryption key held by a
// MasterKey must be scrubbed once the key is dropped. sk must not be used
// afterward.
func (sk *PrivateKey) Destroy() {
	zero := new(saferith.Nat).SetBig(big.NewInt(0), 1)
	sk.lambda = zero
	sk.mu = zero
}

// nonce draws a uniformly random element of Z_N^*. The probability of
// drawing a non-unit is negligible for an RSA-strength N, but we resample
// on the rare GCD != 1 case rather than assume it away.
func (pk *PublicKey) nonce() (*saferith.Nat, error) {
	n := pk.n.Big()
	for {
		r, err := rand.Int(rand.Reader, n)
		if err != nil {
			return nil, err
		}
		if r.Sign() == 0 {
			continue
		}
		if new(big.Int).GCD(nil, nil, r, n).Cmp(big.NewInt(1)) != 0 {
			continue
		}
		return new(saferith.Nat).SetBig(r, n.BitLen()), nil
	}
}

// Encrypt returns Enc(m) under a freshly sampled nonce, and the nonce
// itself (needed by pkg/zk's range proof, which must reveal the nonce used
// for the ciphertext it is proving a range statement about).
func (pk *PublicKey) Encrypt(m *big.Int) (*Ciphertext, *big.Int, error) {
	if m.Sign() < 0 || m.Cmp(pk.N()) >= 0 {
		return nil, nil, ErrOutOfRange
	}
	r, err := pk.nonce()
	if err != nil {
		return nil, nil, err
	}
	c := pk.encryptWithNonce(m, r)
	return c, r.Big(), nil
}

// EncryptWithNonce encrypts m using caller-supplied randomness r. Used by
// the range-proof prover, which needs to encrypt its blinding value with a
// nonce it can later reveal as part of the response.
func (pk *PublicKey) EncryptWithNonce(m, r *big.Int) (*Ciphertext, error) {
	if m.Sign() < 0 || m.Cmp(pk.N()) >= 0 {
		return nil, ErrOutOfRange
	}
	rNat := new(saferith.Nat).SetBig(r, pk.n.Big().BitLen())
	return pk.encryptWithNonce(m, rNat), nil
}

func (pk *PublicKey) encryptWithNonce(m *big.Int, r *saferith.Nat) *Ciphertext {
	// c = (1 + N*m) * r^N mod N^2
	gm := new(big.Int).Mul(pk.N(), m)
	gm.Add(gm, big.NewInt(1))
	gmNat := new(saferith.Nat).SetBig(gm, pk.nSquared.BitLen())

	rn := new(saferith.Nat).Exp(r, pk.n, pk.nSquared)
	c := new(saferith.Nat).ModMul(gmNat, rn, pk.nSquared)
	return &Ciphertext{c: c}
}

// Decrypt recovers the plaintext m in [0, N) encrypted under c.
func (sk *PrivateKey) Decrypt(c *Ciphertext) (*big.Int, error) {
	// m = L(c^lambda mod N^2) * mu mod N, where L(x) = (x-1)/N
	u := new(saferith.Nat).Exp(c.c, sk.lambda, sk.nSquared)
	uBig := u.Big()
	l := new(big.Int).Sub(uBig, big.NewInt(1))
	l.Div(l, sk.N())
	lNat := new(saferith.Nat).SetBig(l, sk.n.Big().BitLen())

	m := new(saferith.Nat).ModMul(lNat, sk.mu, sk.nMod)
	return m.Big(), nil
}

// NthRoot returns y^(N^-1 mod lambda) mod N, the unique N-th root of y in
// Z_N^*. Computing it requires knowing N's factorization (via lambda), which
// is exactly what pkg/zk's correct-key proof uses to show N was generated
// honestly: for a uniformly random y, only someone holding the factorization
// can produce an N-th root on demand.
func (sk *PrivateKey) NthRoot(y *big.Int) *big.Int {
	nInvLambda := new(big.Int).ModInverse(sk.N(), sk.lambda.Big())
	yNat := new(saferith.Nat).SetBig(y, sk.n.Big().BitLen())
	expNat := new(saferith.Nat).SetBig(nInvLambda, sk.lambda.Big().BitLen())
	x := new(saferith.Nat).Exp(yNat, expNat, sk.nMod)
	return x.Big()
}

// HomomorphicAdd returns Enc(m1+m2) given Enc(m1) and Enc(m2).
func (pk *PublicKey) HomomorphicAdd(a, b *Ciphertext) *Ciphertext {
	c := new(saferith.Nat).ModMul(a.c, b.c, pk.nSquared)
	return &Ciphertext{c: c}
}

// HomomorphicScale returns Enc(k*m) given Enc(m) and a plaintext scalar k.
// k need not be reduced mod N; it is reduced here.
func (pk *PublicKey) HomomorphicScale(a *Ciphertext, k *big.Int) *Ciphertext {
	kMod := new(big.Int).Mod(k, pk.N())
	kNat := new(saferith.Nat).SetBig(kMod, pk.N().BitLen())
	c := new(saferith.Nat).Exp(a.c, kNat, pk.nSquared)
	return &Ciphertext{c: c}
}

// Bytes returns the minimal big-endian encoding of the ciphertext; it is
// not padded to the byte length of N^2.
func (c *Ciphertext) Bytes() []byte {
	return c.c.Big().Bytes()
}

// CiphertextFromBytes decodes a ciphertext previously produced by Bytes,
// under the given public key's N^2.
func CiphertextFromBytes(pk *PublicKey, b []byte) *Ciphertext {
	v := new(big.Int).SetBytes(b)
	return &Ciphertext{c: new(saferith.Nat).SetBig(v, pk.nSquared.BitLen())}
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (c *Ciphertext) MarshalBinary() ([]byte, error) { return c.Bytes(), nil }

// UnmarshalBinary implements encoding.BinaryUnmarshaler. The modulus
// context CiphertextFromBytes normally takes isn't needed to just hold the
// value; callers that go on to do modular arithmetic with the result
// combine it with a PublicKey anyway.
func (c *Ciphertext) UnmarshalBinary(b []byte) error {
	v := new(big.Int).SetBytes(b)
	c.c = new(saferith.Nat).SetBig(v, v.BitLen())
	return nil
}

// Equal reports whether two ciphertexts encode the same Z_{N^2} element.
func (c *Ciphertext) Equal(other *Ciphertext) bool {
	return c.c.Big().Cmp(other.c.Big()) == 0
}

// BigInt exposes the ciphertext's underlying integer, e.g. for feeding a
// Fiat-Shamir transcript in pkg/zk.
func (c *Ciphertext) BigInt() *big.Int { return c.c.Big() }
