package masterkey

import (
	"context"
	"math/big"

	"github.com/mpc-kms/secp256k1/internal/zeroize"
	"github.com/mpc-kms/secp256k1/pkg/curve"
	"github.com/mpc-kms/secp256k1/pkg/logging"
	"github.com/mpc-kms/secp256k1/pkg/mkerr"
	"github.com/mpc-kms/secp256k1/protocols/backup"
	"github.com/mpc-kms/secp256k1/protocols/chaincode"
	"github.com/mpc-kms/secp256k1/protocols/derive"
	"github.com/mpc-kms/secp256k1/protocols/rotation"
	"github.com/mpc-kms/secp256k1/protocols/schnorr2p"
)

// SchnorrParty1 is P1's view of a two-party Schnorr key.
type SchnorrParty1 struct {
	Priv *schnorr2p.Party1Private
	Pub  *schnorr2p.KeyGenResult
	CC   *chaincode.ChainCode
}

// NewSchnorrParty1 wraps the output of an S4 key-generation run as a
// MasterKey.
func NewSchnorrParty1(priv *schnorr2p.Party1Private, pub *schnorr2p.KeyGenResult, cc *chaincode.ChainCode) *SchnorrParty1 {
	return &SchnorrParty1{Priv: priv, Pub: pub, CC: cc}
}

func (m *SchnorrParty1) Variant() Variant                { return VariantSchnorr }
func (m *SchnorrParty1) PublicPoint() *curve.Point       { return m.Pub.Q }
func (m *SchnorrParty1) ChainCode() *chaincode.ChainCode { return m.CC }

// Destroy scrubs X1.
func (m *SchnorrParty1) Destroy() {
	zeroize.Scalar(m.Priv.X1)
}

// Signer starts P1's side of S5 signing. loggers takes an optional
// Logger, forwarded to the underlying signer.
func (m *SchnorrParty1) Signer(loggers ...logging.Logger) (*schnorr2p.Party1Signer, error) {
	return schnorr2p.NewParty1Signer(m.Priv, m.Pub.Q, loggers...)
}

// Rotate applies the S6 coin-flip factor r. Unlike ECDSA, Schnorr rotation
// is a pure scalar update with no companion Paillier round, so this
// returns the rotated MasterKey directly rather than a stateful protocol
// object.
func (m *SchnorrParty1) Rotate(r *curve.Scalar) *SchnorrParty1 {
	priv, pub := rotation.RotateSchnorrParty1(m.Priv, m.Pub, r)
	return &SchnorrParty1{Priv: priv, Pub: pub, CC: m.CC}
}

// GetChild derives the S7 child key at path. Schnorr HD derivation folds
// the tweak into P1's share and point; P2's is untouched.
func (m *SchnorrParty1) GetChild(path []*big.Int) (*SchnorrParty1, error) {
	res, err := derive.Derive(derive.VariantSchnorr, path, m.Pub.Q, m.CC)
	if err != nil {
		return nil, err
	}
	priv, pub := derive.ApplySchnorrParty1(m.Priv, m.Pub, res)
	return &SchnorrParty1{Priv: priv, Pub: pub, CC: res.ChainCode}, nil
}

// Backup encrypts X1 under backup public key y, with a proof it opens to
// P1's public share.
func (m *SchnorrParty1) Backup(segmentSize, numSegments int, y *curve.Point) (*backup.Ciphertext, *backup.Proof, error) {
	ct, segments, err := backup.Encrypt(m.Priv.X1, segmentSize, numSegments, y)
	if err != nil {
		return nil, nil, err
	}
	proof, err := backup.Prove(segments, ct, y, m.Pub.I1)
	if err != nil {
		return nil, nil, err
	}
	return ct, proof, nil
}

// RecoverSchnorrParty1 implements spec scenario "P1 lost": the survivor
// decrypts P1's published backup and rebuilds MasterKey(P1) directly —
// Schnorr shares carry no companion secret state, so recovery is just
// decrypt-and-verify.
func RecoverSchnorrParty1(ct *backup.Ciphertext, backupPriv *curve.Scalar, pub *schnorr2p.KeyGenResult, cc *chaincode.ChainCode, loggers ...logging.Logger) (*SchnorrParty1, error) {
	log := logging.First(loggers...)
	x1, err := backup.Decrypt(ct, backupPriv)
	if err != nil {
		return nil, err
	}
	if !curve.ScalarBaseMult(x1).Equal(pub.I1) {
		log.Warn(context.Background(), "masterkey: schnorr party1 recovery rejected", "reason", errRecoveredShareMismatch)
		return nil, mkerr.New("masterkey.RecoverSchnorrParty1", mkerr.Proof, errRecoveredShareMismatch)
	}
	log.Info(context.Background(), "masterkey: schnorr party1 recovered")
	return &SchnorrParty1{Priv: &schnorr2p.Party1Private{X1: x1}, Pub: pub, CC: cc}, nil
}

// SchnorrParty2 is P2's view of a two-party Schnorr key.
type SchnorrParty2 struct {
	Priv *schnorr2p.Party2Private
	Pub  *schnorr2p.KeyGenResult
	CC   *chaincode.ChainCode
}

// NewSchnorrParty2 wraps the output of an S4 key-generation run as a
// MasterKey.
func NewSchnorrParty2(priv *schnorr2p.Party2Private, pub *schnorr2p.KeyGenResult, cc *chaincode.ChainCode) *SchnorrParty2 {
	return &SchnorrParty2{Priv: priv, Pub: pub, CC: cc}
}

func (m *SchnorrParty2) Variant() Variant                { return VariantSchnorr }
func (m *SchnorrParty2) PublicPoint() *curve.Point       { return m.Pub.Q }
func (m *SchnorrParty2) ChainCode() *chaincode.ChainCode { return m.CC }

// Destroy scrubs X2.
func (m *SchnorrParty2) Destroy() {
	zeroize.Scalar(m.Priv.X2)
}

// Signer starts P2's side of S5 signing. loggers takes an optional
// Logger, forwarded to the underlying signer.
func (m *SchnorrParty2) Signer(loggers ...logging.Logger) (*schnorr2p.Party2Signer, error) {
	return schnorr2p.NewParty2Signer(m.Priv, m.Pub, loggers...)
}

// Rotate applies the S6 coin-flip factor r.
func (m *SchnorrParty2) Rotate(r *curve.Scalar) *SchnorrParty2 {
	priv, pub := rotation.RotateSchnorrParty2(m.Priv, m.Pub, r)
	return &SchnorrParty2{Priv: priv, Pub: pub, CC: m.CC}
}

// GetChild derives the S7 child key at path. P2's share is untouched by
// Schnorr HD derivation; only the joint public material and chain code
// advance.
func (m *SchnorrParty2) GetChild(path []*big.Int) (*SchnorrParty2, error) {
	res, err := derive.Derive(derive.VariantSchnorr, path, m.Pub.Q, m.CC)
	if err != nil {
		return nil, err
	}
	return &SchnorrParty2{
		Priv: m.Priv,
		Pub:  derive.ApplySchnorrParty2(m.Priv, m.Pub, res),
		CC:   res.ChainCode,
	}, nil
}

// Backup encrypts X2 under backup public key y, with a proof it opens to
// P2's public share.
func (m *SchnorrParty2) Backup(segmentSize, numSegments int, y *curve.Point) (*backup.Ciphertext, *backup.Proof, error) {
	ct, segments, err := backup.Encrypt(m.Priv.X2, segmentSize, numSegments, y)
	if err != nil {
		return nil, nil, err
	}
	proof, err := backup.Prove(segments, ct, y, m.Pub.I2)
	if err != nil {
		return nil, nil, err
	}
	return ct, proof, nil
}

// RecoverSchnorrParty2 implements spec scenario "P2 lost, self-recovery".
func RecoverSchnorrParty2(ct *backup.Ciphertext, backupPriv *curve.Scalar, pub *schnorr2p.KeyGenResult, cc *chaincode.ChainCode, loggers ...logging.Logger) (*SchnorrParty2, error) {
	log := logging.First(loggers...)
	x2, err := backup.Decrypt(ct, backupPriv)
	if err != nil {
		return nil, err
	}
	if !curve.ScalarBaseMult(x2).Equal(pub.I2) {
		log.Warn(context.Background(), "masterkey: schnorr party2 recovery rejected", "reason", errRecoveredShareMismatch)
		return nil, mkerr.New("masterkey.RecoverSchnorrParty2", mkerr.Proof, errRecoveredShareMismatch)
	}
	log.Info(context.Background(), "masterkey: schnorr party2 recovered")
	return &SchnorrParty2{Priv: &schnorr2p.Party2Private{X2: x2}, Pub: pub, CC: cc}, nil
}
