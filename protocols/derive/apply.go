package derive

import (
	"github.com/mpc-kms/secp256k1/pkg/curve"
	"github.com/mpc-kms/secp256k1/protocols/ecdsa2p"
	"github.com/mpc-kms/secp256k1/protocols/schnorr2p"
)

// ApplyECDSAParty1 rewrites P1's public key material to the derived child
// key. P1's own share x1 (and its Paillier key) are left untouched: per
// original_source/ecdsa/two_party_lindell17/party1.rs's get_child, the
// cumulative offset is folded only into P2's share, since x1 exists only as
// a Paillier ciphertext and cannot absorb a public scalar without a fresh
// proof (the same reasoning rotation.ECDSARotateParty1 follows).
func ApplyECDSAParty1(old *ecdsa2p.Party1Private, oldPub *ecdsa2p.KeyGenResult, res *Result) *ecdsa2p.KeyGenResult {
	return &ecdsa2p.KeyGenResult{
		Q:           res.Q,
		P1:          oldPub.P1,
		P2:          oldPub.P2.ScalarMult(res.FCum),
		PaillierPub: oldPub.PaillierPub,
		CKey:        oldPub.CKey,
	}
}

// ApplyECDSAParty2 rewrites P2's key material to the derived child key:
// x2' = x2*f_cum, p2' = p2*f_cum.
func ApplyECDSAParty2(old *ecdsa2p.Party2Private, oldPub *ecdsa2p.KeyGenResult, res *Result) (*ecdsa2p.Party2Private, *ecdsa2p.KeyGenResult) {
	x2New := old.X2.Mul(res.FCum)
	pub := &ecdsa2p.KeyGenResult{
		Q:           res.Q,
		P1:          oldPub.P1,
		P2:          curve.ScalarBaseMult(x2New),
		PaillierPub: oldPub.PaillierPub,
		CKey:        oldPub.CKey,
	}
	return &ecdsa2p.Party2Private{X2: x2New, PaillierKey: old.PaillierKey}, pub
}

// ApplySchnorrParty1 rewrites P1's key material to the derived child key:
// x1' = x1+f_cum, i1' = i1+f_cum*G. Per
// original_source/schnorr/two_party/party1.rs's get_child, P1 is the party
// that absorbs the HD offset for the Schnorr variant, the mirror of the
// ECDSA case.
func ApplySchnorrParty1(old *schnorr2p.Party1Private, oldPub *schnorr2p.KeyGenResult, res *Result) (*schnorr2p.Party1Private, *schnorr2p.KeyGenResult) {
	x1New := old.X1.Add(res.FCum)
	pub := &schnorr2p.KeyGenResult{Q: res.Q, I1: curve.ScalarBaseMult(x1New), I2: oldPub.I2}
	return &schnorr2p.Party1Private{X1: x1New}, pub
}

// ApplySchnorrParty2 rewrites P2's public key material to the derived child
// key. P2's own share x2 is left untouched: per
// original_source/schnorr/two_party/party2.rs's get_child, P2 folds in a
// zero element, a no-op.
func ApplySchnorrParty2(old *schnorr2p.Party2Private, oldPub *schnorr2p.KeyGenResult, res *Result) *schnorr2p.KeyGenResult {
	i1New := oldPub.I1.Add(curve.ScalarBaseMult(res.FCum))
	return &schnorr2p.KeyGenResult{Q: res.Q, I1: i1New, I2: oldPub.I2}
}
