// Package commitment implements the hash-based commit/decommit scheme used
// by S1 (ECDH-with-PoK) and S6 (coin-flip): commit to an arbitrary message
// with a random salt, publish the commitment, later reveal the message and
// salt so the counterparty can recompute and compare.
//
// Hashing uses BLAKE3 (github.com/zeebo/blake3) with a domain-separation
// prefix rather than SHA-256, matching the hash choice this module makes
// throughout pkg/zk for Fiat-Shamir challenges; see SPEC_FULL.md §4 for the
// rationale.
package commitment
