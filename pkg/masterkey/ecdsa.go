package masterkey

import (
	"context"
	"math/big"

	"github.com/mpc-kms/secp256k1/internal/zeroize"
	"github.com/mpc-kms/secp256k1/pkg/curve"
	"github.com/mpc-kms/secp256k1/pkg/logging"
	"github.com/mpc-kms/secp256k1/pkg/mkerr"
	"github.com/mpc-kms/secp256k1/pkg/paillier"
	"github.com/mpc-kms/secp256k1/protocols/backup"
	"github.com/mpc-kms/secp256k1/protocols/chaincode"
	"github.com/mpc-kms/secp256k1/protocols/derive"
	"github.com/mpc-kms/secp256k1/protocols/ecdsa2p"
	"github.com/mpc-kms/secp256k1/protocols/rotation"
)

// ECDSAParty1 is P1's view of a two-party ECDSA key: its share and Paillier
// decryption key, the joint public material, and the shared chain code.
type ECDSAParty1 struct {
	Priv *ecdsa2p.Party1Private
	Pub  *ecdsa2p.KeyGenResult
	CC   *chaincode.ChainCode
}

// NewECDSAParty1 wraps the output of an S3 key-generation run as a
// MasterKey.
func NewECDSAParty1(priv *ecdsa2p.Party1Private, pub *ecdsa2p.KeyGenResult, cc *chaincode.ChainCode) *ECDSAParty1 {
	return &ECDSAParty1{Priv: priv, Pub: pub, CC: cc}
}

func (m *ECDSAParty1) Variant() Variant                { return VariantECDSA }
func (m *ECDSAParty1) PublicPoint() *curve.Point       { return m.Pub.Q }
func (m *ECDSAParty1) ChainCode() *chaincode.ChainCode { return m.CC }

// Destroy scrubs X1 and, if present, the Paillier decryption key.
func (m *ECDSAParty1) Destroy() {
	zeroize.Scalar(m.Priv.X1)
	if m.Priv.PaillierKey != nil {
		m.Priv.PaillierKey.Destroy()
	}
}

// Signer starts P1's side of S5 signing. loggers takes an optional Logger,
// forwarded to the underlying signer.
func (m *ECDSAParty1) Signer(loggers ...logging.Logger) (*ecdsa2p.Party1Signer, error) {
	return ecdsa2p.NewParty1Signer(m.Priv, m.Pub.Q, loggers...)
}

// Rotator starts P1's side of S6 rotation for the given coin-flipped
// factor. The caller drives the returned state through its message rounds
// with the peer's ECDSARotateParty2, then calls NewECDSAParty1FromRotation
// with the finished state to obtain the rotated MasterKey. loggers takes
// an optional Logger, forwarded to the underlying rotation state machine.
func (m *ECDSAParty1) Rotator(r *curve.Scalar, loggers ...logging.Logger) (*rotation.ECDSARotateParty1, error) {
	return rotation.NewECDSARotateParty1(m.Priv, m.Pub, r, loggers...)
}

// NewECDSAParty1FromRotation wraps a completed rotation round as a
// MasterKey, keeping the chain code fixed (rotation never changes it).
func NewECDSAParty1FromRotation(state *rotation.ECDSARotateParty1, cc *chaincode.ChainCode) *ECDSAParty1 {
	return &ECDSAParty1{Priv: state.Private(), Pub: state.Result(), CC: cc}
}

// GetChild derives the S7 child key at path. P1's share is untouched by
// ECDSA HD derivation; only the joint public material and chain code
// advance.
func (m *ECDSAParty1) GetChild(path []*big.Int) (*ECDSAParty1, error) {
	res, err := derive.Derive(derive.VariantECDSA, path, m.Pub.Q, m.CC)
	if err != nil {
		return nil, err
	}
	return &ECDSAParty1{
		Priv: m.Priv,
		Pub:  derive.ApplyECDSAParty1(m.Priv, m.Pub, res),
		CC:   res.ChainCode,
	}, nil
}

// Backup encrypts X1 under backup public key y, segmented into numSegments
// segments of segmentSize bits each, with a proof it opens to P1's public
// share.
func (m *ECDSAParty1) Backup(segmentSize, numSegments int, y *curve.Point) (*backup.Ciphertext, *backup.Proof, error) {
	ct, segments, err := backup.Encrypt(m.Priv.X1, segmentSize, numSegments, y)
	if err != nil {
		return nil, nil, err
	}
	proof, err := backup.Prove(segments, ct, y, m.Pub.P1)
	if err != nil {
		return nil, nil, err
	}
	return ct, proof, nil
}

// RecoverECDSAParty1 implements spec scenario "P1 lost": the survivor
// decrypts P1's published backup, recovers X1, and synthesizes a fresh,
// fully usable MasterKey(P1) by generating new Paillier material and
// re-encrypting X1 under it — the same Paillier-generate-then-encrypt
// sequence S3's key generation and S6's rotation both perform, here run
// unilaterally against an already-known scalar instead of a freshly
// sampled or rescaled one.
func RecoverECDSAParty1(ct *backup.Ciphertext, backupPriv *curve.Scalar, pub *ecdsa2p.KeyGenResult, cc *chaincode.ChainCode, loggers ...logging.Logger) (*ECDSAParty1, error) {
	log := logging.First(loggers...)
	x1, err := backup.Decrypt(ct, backupPriv)
	if err != nil {
		return nil, err
	}
	if !curve.ScalarBaseMult(x1).Equal(pub.P1) {
		log.Warn(context.Background(), "masterkey: ecdsa party1 recovery rejected", "reason", errRecoveredShareMismatch)
		return nil, mkerr.New("masterkey.RecoverECDSAParty1", mkerr.Proof, errRecoveredShareMismatch)
	}

	sk, err := paillier.Generate()
	if err != nil {
		return nil, err
	}
	cKey, _, err := sk.PublicKey.Encrypt(x1.BigInt())
	if err != nil {
		return nil, err
	}

	newPub := &ecdsa2p.KeyGenResult{
		Q:           pub.Q,
		P1:          pub.P1,
		P2:          pub.P2,
		PaillierPub: &sk.PublicKey,
		CKey:        cKey,
	}
	log.Info(context.Background(), "masterkey: ecdsa party1 recovered with fresh paillier material")
	return &ECDSAParty1{
		Priv: &ecdsa2p.Party1Private{X1: x1, PaillierKey: sk},
		Pub:  newPub,
		CC:   cc,
	}, nil
}

// RecoverECDSAParty1Partial implements spec scenario "P1 self-recovery with
// forced rotation": P1 decrypts its own backup and recovers X1, but has no
// Paillier material (that was never part of the backup). The returned
// MasterKey cannot sign until its Rotator is run to completion with P2,
// which re-derives fresh Paillier state exactly as an ordinary S6 round
// does.
func RecoverECDSAParty1Partial(ct *backup.Ciphertext, backupPriv *curve.Scalar, pub *ecdsa2p.KeyGenResult, cc *chaincode.ChainCode, loggers ...logging.Logger) (*ECDSAParty1, error) {
	log := logging.First(loggers...)
	x1, err := backup.Decrypt(ct, backupPriv)
	if err != nil {
		return nil, err
	}
	if !curve.ScalarBaseMult(x1).Equal(pub.P1) {
		log.Warn(context.Background(), "masterkey: ecdsa party1 partial recovery rejected", "reason", errRecoveredShareMismatch)
		return nil, mkerr.New("masterkey.RecoverECDSAParty1Partial", mkerr.Proof, errRecoveredShareMismatch)
	}
	log.Info(context.Background(), "masterkey: ecdsa party1 partially recovered, rotation required before signing")
	return &ECDSAParty1{
		Priv: &ecdsa2p.Party1Private{X1: x1},
		Pub:  pub,
		CC:   cc,
	}, nil
}

// ECDSAParty2 is P2's view of a two-party ECDSA key: its share in the
// clear, the joint public material, and the shared chain code.
type ECDSAParty2 struct {
	Priv *ecdsa2p.Party2Private
	Pub  *ecdsa2p.KeyGenResult
	CC   *chaincode.ChainCode
}

// NewECDSAParty2 wraps the output of an S3 key-generation run as a
// MasterKey.
func NewECDSAParty2(priv *ecdsa2p.Party2Private, pub *ecdsa2p.KeyGenResult, cc *chaincode.ChainCode) *ECDSAParty2 {
	return &ECDSAParty2{Priv: priv, Pub: pub, CC: cc}
}

func (m *ECDSAParty2) Variant() Variant                { return VariantECDSA }
func (m *ECDSAParty2) PublicPoint() *curve.Point       { return m.Pub.Q }
func (m *ECDSAParty2) ChainCode() *chaincode.ChainCode { return m.CC }

// Destroy scrubs X2.
func (m *ECDSAParty2) Destroy() {
	zeroize.Scalar(m.Priv.X2)
}

// Signer starts P2's side of S5 signing. loggers takes an optional Logger,
// forwarded to the underlying signer.
func (m *ECDSAParty2) Signer(loggers ...logging.Logger) (*ecdsa2p.Party2Signer, error) {
	return ecdsa2p.NewParty2Signer(m.Priv, m.Pub, loggers...)
}

// Rotator starts P2's side of S6 rotation for the given coin-flipped
// factor. loggers takes an optional Logger, forwarded to the underlying
// rotation state machine.
func (m *ECDSAParty2) Rotator(r *curve.Scalar, loggers ...logging.Logger) (*rotation.ECDSARotateParty2, error) {
	return rotation.NewECDSARotateParty2(m.Priv, m.Pub, r, loggers...)
}

// NewECDSAParty2FromRotation wraps a completed rotation round as a
// MasterKey.
func NewECDSAParty2FromRotation(state *rotation.ECDSARotateParty2, cc *chaincode.ChainCode) *ECDSAParty2 {
	return &ECDSAParty2{Priv: state.Private(), Pub: state.Result(), CC: cc}
}

// GetChild derives the S7 child key at path. ECDSA HD derivation folds the
// tweak into P2's share and point; P1's is untouched.
func (m *ECDSAParty2) GetChild(path []*big.Int) (*ECDSAParty2, error) {
	res, err := derive.Derive(derive.VariantECDSA, path, m.Pub.Q, m.CC)
	if err != nil {
		return nil, err
	}
	priv, pub := derive.ApplyECDSAParty2(m.Priv, m.Pub, res)
	return &ECDSAParty2{Priv: priv, Pub: pub, CC: res.ChainCode}, nil
}

// Backup encrypts X2 under backup public key y, with a proof it opens to
// P2's public share.
func (m *ECDSAParty2) Backup(segmentSize, numSegments int, y *curve.Point) (*backup.Ciphertext, *backup.Proof, error) {
	ct, segments, err := backup.Encrypt(m.Priv.X2, segmentSize, numSegments, y)
	if err != nil {
		return nil, nil, err
	}
	proof, err := backup.Prove(segments, ct, y, m.Pub.P2)
	if err != nil {
		return nil, nil, err
	}
	return ct, proof, nil
}

// RecoverECDSAParty2 implements spec scenario "P2 lost, self-recovery": P2
// decrypts its own backup and, with the stored public material and chain
// code, rebuilds its MasterKey directly — X2 is held in the clear with no
// companion Paillier state, so nothing else needs regenerating.
func RecoverECDSAParty2(ct *backup.Ciphertext, backupPriv *curve.Scalar, pub *ecdsa2p.KeyGenResult, cc *chaincode.ChainCode, loggers ...logging.Logger) (*ECDSAParty2, error) {
	log := logging.First(loggers...)
	x2, err := backup.Decrypt(ct, backupPriv)
	if err != nil {
		return nil, err
	}
	if !curve.ScalarBaseMult(x2).Equal(pub.P2) {
		log.Warn(context.Background(), "masterkey: ecdsa party2 recovery rejected", "reason", errRecoveredShareMismatch)
		return nil, mkerr.New("masterkey.RecoverECDSAParty2", mkerr.Proof, errRecoveredShareMismatch)
	}
	log.Info(context.Background(), "masterkey: ecdsa party2 recovered")
	return &ECDSAParty2{Priv: &ecdsa2p.Party2Private{X2: x2}, Pub: pub, CC: cc}, nil
}
