// Package schnorr2p implements two-party Schnorr key generation and
// signing over secp256k1: both parties hold their share x_i in the clear,
// and the aggregate key is additive, Q = I1+I2 where I_i = x_i*G.
//
// Grounded on original_source/schnorr/two_party/party1.rs and party2.rs
// (KeyGen::first_message/second_message/third_message,
// sign_first_message/sign_second_message/signature), but simplified from
// that source's mutual-partial-Schnorr-signature keygen proof down to a
// single protocols/ecdh exchange with the additive Combine: spec's keygen
// text ("each party broadcasts a commitment over I_i and a discrete-log
// proof; after decommitment and cross-verification, Q = I1+I2") is exactly
// what protocols/ecdh already generalizes, so keygen here is chaincode's
// twin with AddCombine in place of ScalarMultCombine. Signing runs a
// second ecdh exchange for the ephemeral joint point R = R1+R2, then layers
// a Fiat-Shamir challenge and additive partial-signature combination on
// top, following EphKey::compute_joint_comm_e and partial_sign/
// add_signature_parts.
package schnorr2p
