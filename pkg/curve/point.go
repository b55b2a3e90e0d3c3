package curve

import (
	"encoding/hex"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// ErrIdentityPoint is returned when an operation would produce or accept
// the point at infinity where spec invariants forbid it (§3: "never the
// identity for a key share").
var ErrIdentityPoint = errors.New("curve: point must not be the identity")

// Point is a secp256k1 group element, always held and compared in affine
// coordinates.
type Point struct {
	p secp256k1.JacobianPoint
}

// Generator returns the secp256k1 base point G, computed as 1*G rather than
// by transcribing the generator's coordinates by hand.
func Generator() *Point {
	return scalarBaseMult(ScalarOne())
}

func scalarBaseMult(k *Scalar) *Point {
	var result secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(k.ModNScalar(), &result)
	result.ToAffine()
	return &Point{p: result}
}

// ScalarBaseMult returns k*G.
func ScalarBaseMult(k *Scalar) *Point {
	return scalarBaseMult(k)
}

// ScalarMult returns k*P.
func (p *Point) ScalarMult(k *Scalar) *Point {
	var result secp256k1.JacobianPoint
	pp := p.p
	secp256k1.ScalarMultNonConst(k.ModNScalar(), &pp, &result)
	result.ToAffine()
	return &Point{p: result}
}

// Add returns p+q.
func (p *Point) Add(q *Point) *Point {
	var result secp256k1.JacobianPoint
	pp, qp := p.p, q.p
	secp256k1.AddNonConst(&pp, &qp, &result)
	result.ToAffine()
	return &Point{p: result}
}

// Negate returns -p.
func (p *Point) Negate() *Point {
	out := p.p
	out.Y.Negate(1)
	out.Y.Normalize()
	return &Point{p: out}
}

// Sub returns p-q.
func (p *Point) Sub(q *Point) *Point {
	return p.Add(q.Negate())
}

// IsIdentity reports whether p is the point at infinity.
func (p *Point) IsIdentity() bool {
	return (p.p.X.IsZero() && p.p.Y.IsZero()) || p.p.Z.IsZero()
}

// Equal reports whether p and q are the same affine point.
func (p *Point) Equal(q *Point) bool {
	a, b := p.p, q.p
	a.ToAffine()
	b.ToAffine()
	return a.X.Equals(&b.X) && a.Y.Equals(&b.Y)
}

// Compressed returns the 33-byte SEC1 compressed encoding, per spec §3/§6.
func (p *Point) Compressed() []byte {
	pub := secp256k1.NewPublicKey(&p.p.X, &p.p.Y)
	return pub.SerializeCompressed()
}

// XOnly returns the 32-byte x-coordinate encoding used by BIP340-style
// Schnorr verifiers (SPEC_FULL §4.4 supplement).
func (p *Point) XOnly() []byte {
	c := p.Compressed()
	return c[1:]
}

// PointFromCompressed parses a 33-byte SEC1 compressed point.
func PointFromCompressed(b []byte) (*Point, error) {
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, err
	}
	var jp secp256k1.JacobianPoint
	pub.AsJacobian(&jp)
	jp.ToAffine()
	return &Point{p: jp}, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *Point) MarshalBinary() ([]byte, error) { return p.Compressed(), nil }

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Point) UnmarshalBinary(b []byte) error {
	np, err := PointFromCompressed(b)
	if err != nil {
		return err
	}
	p.p = np.p
	return nil
}

// String renders the point as lowercase hex of its compressed encoding.
func (p *Point) String() string { return hex.EncodeToString(p.Compressed()) }

// Clone returns a deep copy of p.
func (p *Point) Clone() *Point {
	out := p.p
	return &Point{p: out}
}

// JacobianPoint exposes the underlying decred representation for sibling
// packages that build proofs directly against the curve library.
func (p *Point) JacobianPoint() *secp256k1.JacobianPoint {
	out := p.p
	return &out
}

// PointFromJacobian wraps a decred JacobianPoint (normalized to affine) as
// a Point.
func PointFromJacobian(jp *secp256k1.JacobianPoint) *Point {
	out := *jp
	out.ToAffine()
	return &Point{p: out}
}

// PointFromBigInt33 parses a 33-byte big-endian encoding as a compressed
// point, used by chain-code agreement (spec §3: "canonically
// stored as a big integer equal to the compressed-point encoding of a
// specific curve point").
func PointFromBigInt33(b []byte) (*Point, error) {
	if len(b) != 33 {
		return nil, errors.New("curve: chain code point encoding must be 33 bytes")
	}
	return PointFromCompressed(b)
}
