// Package ecdh implements S1, the commit-then-reveal Diffie-Hellman
// exchange with proof-of-knowledge that every higher sub-protocol in this
// module builds its agreement rounds on: chain-code agreement (S2) wraps
// it directly, and the ECDSA-flavored key-generation and signing exchanges
// (S3, S5) run one instance of it per agreed point.
//
// An Initiator commits to its point and DLog proof, a Responder answers in
// the clear, and the Initiator finally decommits for the Responder to
// verify. Both sides then derive the joint point with a caller-supplied
// Combine function: a product (Diffie-Hellman-style, for chain codes and
// ephemeral key agreement) or a sum (for an additive Schnorr-style joint
// key), per spec §4.1's "sum (Schnorr) or product (ECDSA-flavor) defined
// by the caller."
//
// Grounded on original_source/two_party/party1.rs and party2.rs, which
// wrap curv's dh_key_exchange module's Party1FirstMessage /
// Party1SecondMessage / Party2FirstMessage commit-reveal pattern; this
// package generalizes that into an explicit state machine per spec
// §9's guidance that each sub-protocol be modeled as typed transitions a
// caller can drive across an arbitrary transport.
package ecdh
