package rotation

import (
	"github.com/mpc-kms/secp256k1/pkg/curve"
	"github.com/mpc-kms/secp256k1/protocols/schnorr2p"
)

// RotateSchnorrParty1 computes P1's rotated Schnorr key material given the
// coin-flip output r. Per original_source/schnorr/two_party/party1.rs's
// rotate (party one subtracts the rotation factor) and party2.rs's rotate
// (party two adds it): I1' = I1 - r*G, I2' = I2 + r*G, so Q = I1'+I2'
// stays fixed.
func RotateSchnorrParty1(old *schnorr2p.Party1Private, oldPub *schnorr2p.KeyGenResult, r *curve.Scalar) (*schnorr2p.Party1Private, *schnorr2p.KeyGenResult) {
	x1New := old.X1.Sub(r)
	i1New := curve.ScalarBaseMult(x1New)
	result := &schnorr2p.KeyGenResult{Q: oldPub.Q, I1: i1New, I2: oldPub.I2}
	return &schnorr2p.Party1Private{X1: x1New}, result
}

// RotateSchnorrParty2 computes P2's rotated Schnorr key material given the
// same coin-flip output r.
func RotateSchnorrParty2(old *schnorr2p.Party2Private, oldPub *schnorr2p.KeyGenResult, r *curve.Scalar) (*schnorr2p.Party2Private, *schnorr2p.KeyGenResult) {
	x2New := old.X2.Add(r)
	i2New := curve.ScalarBaseMult(x2New)
	result := &schnorr2p.KeyGenResult{Q: oldPub.Q, I1: oldPub.I1, I2: i2New}
	return &schnorr2p.Party2Private{X2: x2New}, result
}
