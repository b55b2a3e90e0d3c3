package zk_test

import (
	"testing"

	"github.com/mpc-kms/secp256k1/pkg/curve"
	"github.com/mpc-kms/secp256k1/pkg/zk"
)

func TestDLogProveVerify(t *testing.T) {
	x, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar failed: %v", err)
	}
	X := curve.ScalarBaseMult(x)

	proof, err := zk.ProveDLog(x, X, []byte("session-1"))
	if err != nil {
		t.Fatalf("ProveDLog failed: %v", err)
	}

	if !zk.VerifyDLog(proof, X, []byte("session-1")) {
		t.Error("VerifyDLog rejected a valid proof")
	}
}

func TestDLogVerifyRejectsWrongAux(t *testing.T) {
	x, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar failed: %v", err)
	}
	X := curve.ScalarBaseMult(x)

	proof, err := zk.ProveDLog(x, X, []byte("session-1"))
	if err != nil {
		t.Fatalf("ProveDLog failed: %v", err)
	}

	if zk.VerifyDLog(proof, X, []byte("session-2")) {
		t.Error("VerifyDLog accepted a proof bound to a different session")
	}
}

func TestDLogVerifyRejectsWrongPoint(t *testing.T) {
	x, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar failed: %v", err)
	}
	X := curve.ScalarBaseMult(x)

	proof, err := zk.ProveDLog(x, X, nil)
	if err != nil {
		t.Fatalf("ProveDLog failed: %v", err)
	}

	other, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar failed: %v", err)
	}
	wrongX := curve.ScalarBaseMult(other)

	if zk.VerifyDLog(proof, wrongX, nil) {
		t.Error("VerifyDLog accepted a proof against the wrong public point")
	}
}
