package masterkey

import (
	"errors"

	"github.com/mpc-kms/secp256k1/pkg/curve"
	"github.com/mpc-kms/secp256k1/protocols/chaincode"
)

// errRecoveredShareMismatch is returned by the Recover* constructors when a
// backup decrypts to a scalar whose public point does not match the
// counterparty's known public share.
var errRecoveredShareMismatch = errors.New("masterkey: recovered share does not match known public share")

// Variant distinguishes which signature scheme a MasterKey was generated
// for.
type Variant int

const (
	VariantECDSA Variant = iota
	VariantSchnorr
)

func (v Variant) String() string {
	switch v {
	case VariantECDSA:
		return "ecdsa"
	case VariantSchnorr:
		return "schnorr"
	default:
		return "unknown"
	}
}

// MasterKey is the common surface every concrete key state exposes: its
// variant, the joint public key both parties agree on, the shared chain
// code, and the ability to scrub its own secret material on disposal.
type MasterKey interface {
	Variant() Variant
	PublicPoint() *curve.Point
	ChainCode() *chaincode.ChainCode
	Destroy()
}

var (
	_ MasterKey = (*ECDSAParty1)(nil)
	_ MasterKey = (*ECDSAParty2)(nil)
	_ MasterKey = (*SchnorrParty1)(nil)
	_ MasterKey = (*SchnorrParty2)(nil)
)
