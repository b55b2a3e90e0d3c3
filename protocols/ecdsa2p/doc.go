// Package ecdsa2p implements two-party ECDSA key generation and signing
// over secp256k1 (Lindell'17 style): P1 holds its share x1 Paillier-
// encrypted, P2 holds its share x2 in the clear, and the aggregate public
// key is Q = x1·x2·G.
//
// Naming follows the message sequence in original_source's
// ecdsa/two_party_lindell17/party1.rs and party2.rs (KeyGenParty1Message2,
// PDLFirstMessage/PDLSecondMessage, EphKeyGenFirstMsg/SecondMsg), rebuilt
// on this module's own curve, Paillier, and zk primitives rather than the
// crates those files import. Key generation composes protocols/ecdh (round
// 1: agree on p1, p2, and Q = x1·p2 in one exchange) with pkg/zk's
// ValidPaillierProof, RangeProof, and PDL proof (rounds 2-4). Signing
// composes a second ecdh exchange (the ephemeral joint point R = k1·k2·G)
// with a Paillier-homomorphic partial-signature combination.
package ecdsa2p
