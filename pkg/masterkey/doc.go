// Package masterkey is the tagged-variant façade over the four concrete
// key states this module produces: an ECDSA share held by P1, an ECDSA
// share held by P2, a Schnorr share held by P1, and a Schnorr share held
// by P2. Each is its own struct rather than one generic interface with a
// lowest-common-denominator signature, since ECDSA and Schnorr sign/rotate/
// derive asymmetrically by party (see protocols/ecdsa2p, protocols/
// schnorr2p, protocols/rotation, protocols/derive) and forcing them behind
// one shape would hide that asymmetry rather than express it.
//
// All four implement the MasterKey interface for the handful of operations
// that really are uniform: reporting which variant they are, their shared
// public point and chain code, and scrubbing their own secret material.
// Signing, rotating, deriving, and backing up stay on the concrete types,
// since their inputs and outputs differ by variant and by party.
package masterkey
