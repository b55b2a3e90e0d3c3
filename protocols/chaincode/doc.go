// Package chaincode implements S2, chain-code agreement: both parties run
// one instance of protocols/ecdh with the multiplicative Combine and store
// the resulting joint point's compressed encoding, reinterpreted as a big
// integer, as their shared 256-bit chain code (spec §4.2).
//
// Grounded on original_source/chain_code/two_party/party1.rs and
// party2.rs (ChainCode1/ChainCode2, each a thin wrapper around the same
// dh_key_exchange_variant_with_pok_comm module protocols/ecdh already
// generalizes).
package chaincode
