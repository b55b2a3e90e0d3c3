// Package curve provides the scalar and point arithmetic that every
// sub-protocol in this module is built on: addition, multiplication,
// inversion, random sampling, and compressed serialization over secp256k1.
//
// Scalar wraps github.com/decred/dcrd/dcrec/secp256k1/v4's ModNScalar so
// that all modular arithmetic is reduced mod the curve order by
// construction. Point wraps the same package's JacobianPoint, normalized to
// affine on every observable boundary so that equality and serialization
// are well defined.
//
// Nothing in this package talks to the network or blocks; every operation
// is a pure function of its inputs plus, for sampling, crypto/rand.
package curve
