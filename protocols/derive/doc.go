// Package derive implements S7: non-hardened HD child key derivation along
// a path of indices, rewriting the aggregate public key and chain code
// while updating exactly one party's private share.
//
// Grounded on original_source/ecdsa/two_party/mod.rs's hd_key (the
// multiplicative fold: pub_key = pub_key*f_l, f_cum = f_cum*f_l, chain_code
// = chain_code*f_r, each step's f = HMAC-SHA512(chain_code, pubkey||index))
// and original_source/schnorr/two_party/mod.rs's hd_key (the same shape but
// additive: pub_key = pub_key+f_l*G, f_cum = f_cum+f_l). Which party
// absorbs the resulting f_cum is read directly off get_child in
// original_source/ecdsa/two_party_lindell17/{party1,party2}.rs (only P2's
// x2/p2 move; P1's Paillier-backed x1/p1 are left untouched, matching
// rotation's reasoning that rescaling a Paillier ciphertext by a public
// factor without a proof would leak information) and
// original_source/schnorr/two_party/{party1,party2}.rs (the mirror image:
// only P1's local key pair absorbs f_cum via update_key_pair, P2's is
// updated with a zero element, a no-op).
//
// The chain-code-as-point reinterpretation in the original
// (GE::from_bytes(&bn_to_slice[1..33]), stripping curv's leading sign byte
// before parsing 32 bytes) is specific to that library's bignum encoding
// and isn't reproduced byte-for-byte here. This package's chain code is
// already the 33-byte SEC1-compressed encoding a curve point was derived
// from (protocols/chaincode.ChainCode.Bytes), so it is reinterpreted
// directly via curve.PointFromCompressed with no byte-stripping.
package derive
