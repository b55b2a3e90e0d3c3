// Package zk implements the zero-knowledge proofs this module's key
// generation and signing protocols need:
//
//   - DLogProof: a Schnorr-style proof of knowledge of a discrete log,
//     used by S1 (ECDH-with-PoK), S3/S4 keygen, and S6 coin-flip.
//   - ValidPaillierProof: a proof that the prover can take N-th roots
//     modulo a Paillier modulus N, used by S3 keygen so P2 never encrypts a share under a
//     maliciously weak key.
//   - RangeProof: a proof that a Paillier ciphertext encrypts a value
//     bounded by a caller-supplied interval, used alongside
//     ValidPaillierProof in S3 keygen (bound q/3, q the secp256k1 group
//     order) and in S6 rotation (bound q, the true limit on a share already
//     reduced mod q by the rotation factor).
//   - PDL (Proof of Discrete-Log vs Ciphertext): an interactive proof that
//     a Paillier ciphertext and an EC point share the same discrete log,
//     used by S3 keygen to bind P1's Paillier-encrypted share to its
//     public share.
//
// Every challenge is derived with BLAKE3 rather than SHA-256, matching the
// hash this module already uses in pkg/commitment.
package zk
