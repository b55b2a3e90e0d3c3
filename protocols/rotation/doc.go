// Package rotation implements S6: a two-party coin flip producing a shared
// rotation factor r, followed by an ECDSA or Schnorr share refresh that
// rewrites both parties' key material while leaving the aggregate public
// key and chain code unchanged (spec §4.6).
//
// Grounded on original_source/rotation/two_party/{mod,party1,party2}.rs
// for the overall shape (a standalone Rotation value threaded through
// MasterKey1::rotate/MasterKey2::rotate) and on
// original_source/ecdsa/two_party_lindell17/party1.rs's/party2.rs's
// rotate/rotate_first_message/rotate_second_message/rotate_third_message
// for the ECDSA path's fresh-Paillier-plus-PDL structure, and on
// original_source/schnorr/two_party/party1.rs's/party2.rs's rotate for the
// Schnorr path's sign convention: reading those files directly (rather
// than this module's earlier paraphrase of the spec) shows party one
// subtracting the rotation factor and party two adding it, which is the
// convention this package follows for the additive half of the coin flip,
// while the ECDSA path follows party one multiplying its share by r and
// party two by r's inverse, exactly as those files compute it.
package rotation
