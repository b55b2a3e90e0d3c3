// Package backup implements S8: verifiable backup and recovery of a
// party's secret share under a third-party backup public key Y, so that
// a holder of the matching backup private key y can later reconstruct the
// share without either protocol party needing to retain it.
//
// Grounded on original_source/poc.rs and
// original_source/ecdsa/two_party/test.rs's use of
// two_party_ecdsa::centipede::juggling (Msegmentation::to_encrypted_segments,
// Proof::prove/verify, Msegmentation::decrypt): the share is decomposed
// into fixed-width segments small enough to brute-force a discrete log
// over, each segment is ElGamal-encrypted under Y, and a single
// non-interactive proof binds the encrypted segments to the party's
// already-public share point without revealing any segment. The
// centipede crate's own proof internals aren't present in the retrieved
// source, so the proof here is a from-scratch Fiat-Shamir sigma protocol
// for the same linear relation centipede's name describes ("juggling"
// segments between a discrete-log statement and their individual
// ElGamal ciphertexts): knowledge of (s_i, r_i) with C1_i = r_i*G,
// C2_i = s_i*G + r_i*Y, and Q = sum_i(2^(i*segmentSize) * s_i)*G, proved
// with the same BLAKE3 Fiat-Shamir pattern pkg/zk/dlog.go uses.
package backup
