package zk_test

import (
	"math/big"
	"testing"

	"github.com/mpc-kms/secp256k1/pkg/curve"
	"github.com/mpc-kms/secp256k1/pkg/paillier"
	"github.com/mpc-kms/secp256k1/pkg/zk"
)

func TestPDLAcceptsMatchingShare(t *testing.T) {
	sk, err := paillier.Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	x1, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar failed: %v", err)
	}
	Q1 := curve.ScalarBaseMult(x1)

	cKey, _, err := sk.Encrypt(x1.BigInt())
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	challenge, err := zk.ChallengePDL(&sk.PublicKey, cKey)
	if err != nil {
		t.Fatalf("ChallengePDL failed: %v", err)
	}

	com, state, err := zk.FirstMessagePDL(sk, challenge)
	if err != nil {
		t.Fatalf("FirstMessagePDL failed: %v", err)
	}

	reveal := challenge.Reveal()
	opening := zk.SecondMessagePDL(com, state)

	if !zk.VerifyPDL(reveal, opening, Q1) {
		t.Error("VerifyPDL rejected a ciphertext/point pair with a matching discrete log")
	}
}

func TestPDLRejectsMismatchedShare(t *testing.T) {
	sk, err := paillier.Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	x1, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar failed: %v", err)
	}
	// c_key encrypts a value unrelated to Q1, as a malicious P1 might send.
	wrong := big.NewInt(1234567)
	cKey, _, err := sk.Encrypt(wrong)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	Q1 := curve.ScalarBaseMult(x1)

	challenge, err := zk.ChallengePDL(&sk.PublicKey, cKey)
	if err != nil {
		t.Fatalf("ChallengePDL failed: %v", err)
	}

	com, state, err := zk.FirstMessagePDL(sk, challenge)
	if err != nil {
		t.Fatalf("FirstMessagePDL failed: %v", err)
	}

	reveal := challenge.Reveal()
	opening := zk.SecondMessagePDL(com, state)

	if zk.VerifyPDL(reveal, opening, Q1) {
		t.Error("VerifyPDL accepted a ciphertext whose plaintext does not match the claimed point's discrete log")
	}
}
