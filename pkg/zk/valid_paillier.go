package zk

import (
	"math/big"

	"github.com/zeebo/blake3"

	"github.com/mpc-kms/secp256k1/pkg/paillier"
)

// validPaillierRounds is the number of Fiat-Shamir challenges the proof
// answers. Each round a cheating prover (one who does not know N's
// factorization) succeeds with probability at most 1/2 against a random
// challenge, so validPaillierRounds rounds bound the cheating probability at
// 2^-validPaillierRounds.
const validPaillierRounds = 40

const validPaillierDomain = "kms-secp256k1/zk/valid-paillier/v1"

// ValidPaillierProof proves that every challenge has an N-th root modulo a
// Paillier public key's modulus N, which holds when gcd(N, phi(N)) = 1,
// without revealing the factorization. It does not show that N has exactly
// two prime factors. It relies on the fact that only the
// factorization holder can compute N-th roots in Z_N^* on demand: grounded
// on the proof referenced (but not included) by original_source's
// ecdsa/two_party_lindell17/party1.rs as NICorrectKeyProof.
type ValidPaillierProof struct {
	Roots []*big.Int
}

// ProveValidPaillier proves sk's modulus is well-formed.
func ProveValidPaillier(sk *paillier.PrivateKey) *ValidPaillierProof {
	challenges := validPaillierChallenges(&sk.PublicKey)
	roots := make([]*big.Int, len(challenges))
	for i, y := range challenges {
		roots[i] = sk.NthRoot(y)
	}
	return &ValidPaillierProof{Roots: roots}
}

// VerifyValidPaillier checks that every claimed root is genuinely an N-th
// root of its corresponding challenge.
func VerifyValidPaillier(pk *paillier.PublicKey, proof *ValidPaillierProof) bool {
	if proof == nil || len(proof.Roots) != validPaillierRounds {
		return false
	}
	challenges := validPaillierChallenges(pk)
	n := pk.N()
	for i, y := range challenges {
		x := proof.Roots[i]
		if x == nil || x.Sign() < 0 || x.Cmp(n) >= 0 {
			return false
		}
		got := new(big.Int).Exp(x, n, n)
		if got.Cmp(new(big.Int).Mod(y, n)) != 0 {
			return false
		}
	}
	return true
}

// validPaillierChallenges expands BLAKE3's XOF output to N's bit length for
// each round, since a single 32-byte digest is far narrower than a
// 2048-bit modulus.
func validPaillierChallenges(pk *paillier.PublicKey) []*big.Int {
	n := pk.N()
	byteLen := (n.BitLen() + 7) / 8
	out := make([]*big.Int, validPaillierRounds)
	for i := range out {
		h := blake3.New()
		_, _ = h.Write([]byte(validPaillierDomain))
		_, _ = h.Write(n.Bytes())
		_, _ = h.Write([]byte{byte(i), byte(i >> 8)})

		buf := make([]byte, byteLen)
		_, _ = h.Digest().Read(buf)
		out[i] = new(big.Int).Mod(new(big.Int).SetBytes(buf), n)
	}
	return out
}
