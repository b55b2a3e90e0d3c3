// Package paillier implements the additively homomorphic Paillier
// cryptosystem this module needs for two-party ECDSA (S3, S5, S6): key
// generation, encryption, decryption, and the two homomorphic operations
// signing and rotation depend on — ciphertext addition and ciphertext
// multiplication by a plaintext scalar.
//
// Modular exponentiation and multiplication run over
// github.com/cronokirby/saferith's Nat/Modulus types instead of raw
// math/big, so that ciphertext operations take time independent of the
// secret exponent's bit pattern — the same hygiene threshold-ECDSA
// libraries apply to their Paillier arithmetic, since a share-dependent
// timing leak here would leak the very share Paillier is meant to protect.
package paillier
