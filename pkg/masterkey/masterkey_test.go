package masterkey_test

import (
	"math/big"
	"testing"

	"github.com/mpc-kms/secp256k1/pkg/curve"
	"github.com/mpc-kms/secp256k1/pkg/masterkey"
	"github.com/mpc-kms/secp256k1/protocols/chaincode"
	"github.com/mpc-kms/secp256k1/protocols/ecdsa2p"
	"github.com/mpc-kms/secp256k1/protocols/rotation"
	"github.com/mpc-kms/secp256k1/protocols/schnorr2p"
)

func runECDSAKeyGen(t *testing.T) (*ecdsa2p.KeyGenResult, *ecdsa2p.Party1Private, *ecdsa2p.Party2Private) {
	t.Helper()

	p1, err := ecdsa2p.NewKeyGenP1()
	if err != nil {
		t.Fatalf("NewKeyGenP1 failed: %v", err)
	}
	p2, err := ecdsa2p.NewKeyGenP2()
	if err != nil {
		t.Fatalf("NewKeyGenP2 failed: %v", err)
	}

	first1, err := p1.FirstMessage()
	if err != nil {
		t.Fatalf("FirstMessage failed: %v", err)
	}
	second2 := p2.FirstMessage()

	msg2, err := p1.SecondMessage(second2)
	if err != nil {
		t.Fatalf("P1.SecondMessage failed: %v", err)
	}
	cTag, err := p2.SecondMessage(first1, msg2)
	if err != nil {
		t.Fatalf("P2.SecondMessage failed: %v", err)
	}
	com, err := p1.ThirdMessage(cTag)
	if err != nil {
		t.Fatalf("P1.ThirdMessage failed: %v", err)
	}
	reveal := p2.ThirdMessage(com)
	opening, err := p1.FourthMessage(reveal)
	if err != nil {
		t.Fatalf("P1.FourthMessage failed: %v", err)
	}
	if err := p2.Verify(opening); err != nil {
		t.Fatalf("P2.Verify failed: %v", err)
	}

	return p1.Result(), p1.Private(), p2.Private()
}

func runSchnorrKeyGen(t *testing.T) (*schnorr2p.KeyGenResult, *schnorr2p.Party1Private, *schnorr2p.Party2Private) {
	t.Helper()

	p1, err := schnorr2p.NewKeyGenParty1()
	if err != nil {
		t.Fatalf("NewKeyGenParty1 failed: %v", err)
	}
	p2, err := schnorr2p.NewKeyGenParty2()
	if err != nil {
		t.Fatalf("NewKeyGenParty2 failed: %v", err)
	}

	first1, err := p1.FirstMessage()
	if err != nil {
		t.Fatalf("FirstMessage failed: %v", err)
	}
	second2 := p2.FirstMessage()
	decom1, err := p1.SecondMessage(second2)
	if err != nil {
		t.Fatalf("P1.SecondMessage failed: %v", err)
	}
	if err := p2.Verify(first1, decom1); err != nil {
		t.Fatalf("P2.Verify failed: %v", err)
	}

	return p1.Result(second2.Public), p1.Private(), p2.Private()
}

func runCoinFlip(t *testing.T) *curve.Scalar {
	t.Helper()

	c1, err := rotation.NewCoinFlipParty1()
	if err != nil {
		t.Fatalf("NewCoinFlipParty1 failed: %v", err)
	}
	c2, err := rotation.NewCoinFlipParty2()
	if err != nil {
		t.Fatalf("NewCoinFlipParty2 failed: %v", err)
	}

	first1, err := c1.FirstMessage()
	if err != nil {
		t.Fatalf("FirstMessage failed: %v", err)
	}
	second2 := c2.FirstMessage()
	decom1, err := c1.SecondMessage(second2)
	if err != nil {
		t.Fatalf("SecondMessage failed: %v", err)
	}
	if err := c2.Verify(first1, decom1); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	r1 := c1.Result(second2.Public)
	r2 := c2.Result(decom1.Public)
	if !r1.Equal(r2) {
		t.Fatal("P1 and P2 disagree on the coin-flip output")
	}
	return r1
}

func sampleChainCode() *chaincode.ChainCode {
	p1, _ := chaincode.NewParty1()
	p2, _ := chaincode.NewParty2()
	first1, _ := p1.FirstMessage()
	second2 := p2.FirstMessage()
	decom1, _ := p1.SecondMessage()
	_ = p2.Verify(first1, decom1)
	return p1.ComputeChainCode(second2.Public)
}

func TestECDSASignRotateDeriveLifecycle(t *testing.T) {
	pub, priv1, priv2 := runECDSAKeyGen(t)
	cc := sampleChainCode()

	mk1 := masterkey.NewECDSAParty1(priv1, pub, cc)
	mk2 := masterkey.NewECDSAParty2(priv2, pub, cc)

	if mk1.Variant() != masterkey.VariantECDSA || mk2.Variant() != masterkey.VariantECDSA {
		t.Fatal("expected VariantECDSA")
	}
	if !mk1.PublicPoint().Equal(mk2.PublicPoint()) {
		t.Fatal("masterkeys disagree on public point")
	}

	signer1, err := mk1.Signer()
	if err != nil {
		t.Fatalf("mk1.Signer failed: %v", err)
	}
	signer2, err := mk2.Signer()
	if err != nil {
		t.Fatalf("mk2.Signer failed: %v", err)
	}
	eph2, err := signer2.EphFirstMessage()
	if err != nil {
		t.Fatalf("EphFirstMessage failed: %v", err)
	}
	eph1, err := signer1.EphMessage()
	if err != nil {
		t.Fatalf("EphMessage failed: %v", err)
	}
	m := big.NewInt(42)
	partial, err := signer2.PartialSign(eph1, m)
	if err != nil {
		t.Fatalf("PartialSign failed: %v", err)
	}
	sig, err := signer1.Sign(eph2, partial, m)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if sig.R.Sign() == 0 || sig.S.Sign() == 0 {
		t.Fatal("signature has a zero component")
	}

	r := runCoinFlip(t)
	rp1, err := mk1.Rotator(r)
	if err != nil {
		t.Fatalf("Rotator failed: %v", err)
	}
	rp2, err := mk2.Rotator(r)
	if err != nil {
		t.Fatalf("Rotator failed: %v", err)
	}
	msg1, err := rp1.FirstMessage()
	if err != nil {
		t.Fatalf("FirstMessage failed: %v", err)
	}
	cTag, err := rp2.SecondMessage(msg1)
	if err != nil {
		t.Fatalf("SecondMessage failed: %v", err)
	}
	com, err := rp1.ThirdMessage(cTag)
	if err != nil {
		t.Fatalf("ThirdMessage failed: %v", err)
	}
	reveal := rp2.ThirdMessage(com)
	opening := rp1.FourthMessage(reveal, pub.P1)
	if err := rp2.Verify(opening); err != nil {
		t.Fatalf("rotation Verify failed: %v", err)
	}

	rotated1 := masterkey.NewECDSAParty1FromRotation(rp1, cc)
	rotated2 := masterkey.NewECDSAParty2FromRotation(rp2, cc)
	if !rotated1.PublicPoint().Equal(pub.Q) {
		t.Fatal("rotation changed the aggregate public key")
	}

	child1, err := rotated1.GetChild([]*big.Int{big.NewInt(7)})
	if err != nil {
		t.Fatalf("GetChild failed: %v", err)
	}
	child2, err := rotated2.GetChild([]*big.Int{big.NewInt(7)})
	if err != nil {
		t.Fatalf("GetChild failed: %v", err)
	}
	if !child1.PublicPoint().Equal(child2.PublicPoint()) {
		t.Fatal("P1 and P2 disagree on derived child public key")
	}

	mk1.Destroy()
	mk2.Destroy()
	if !priv1.X1.IsZero() || !priv2.X2.IsZero() {
		t.Fatal("Destroy did not scrub the share scalars")
	}
}

func TestSchnorrSignRotateDeriveLifecycle(t *testing.T) {
	pub, priv1, priv2 := runSchnorrKeyGen(t)
	cc := sampleChainCode()

	mk1 := masterkey.NewSchnorrParty1(priv1, pub, cc)
	mk2 := masterkey.NewSchnorrParty2(priv2, pub, cc)

	if mk1.Variant() != masterkey.VariantSchnorr {
		t.Fatal("expected VariantSchnorr")
	}

	signer1, err := mk1.Signer()
	if err != nil {
		t.Fatalf("mk1.Signer failed: %v", err)
	}
	signer2, err := mk2.Signer()
	if err != nil {
		t.Fatalf("mk2.Signer failed: %v", err)
	}
	first1, err := signer1.EphFirstMessage()
	if err != nil {
		t.Fatalf("EphFirstMessage failed: %v", err)
	}
	second2 := signer2.EphMessage()
	m := big.NewInt(99)
	partial, err := signer1.PartialSign(second2, m)
	if err != nil {
		t.Fatalf("PartialSign failed: %v", err)
	}
	_, reply, err := signer2.Sign(first1, partial, m)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	sig1, err := signer1.Finalize(reply, m)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if len(sig1.Bytes()) == 0 {
		t.Fatal("expected a non-empty signature encoding")
	}

	r := runCoinFlip(t)
	rotated1 := mk1.Rotate(r)
	rotated2 := mk2.Rotate(r)
	if !rotated1.PublicPoint().Equal(pub.Q) {
		t.Fatal("Schnorr rotation must not change Q")
	}

	child1, err := rotated1.GetChild([]*big.Int{big.NewInt(3)})
	if err != nil {
		t.Fatalf("GetChild failed: %v", err)
	}
	child2, err := rotated2.GetChild([]*big.Int{big.NewInt(3)})
	if err != nil {
		t.Fatalf("GetChild failed: %v", err)
	}
	if !child1.PublicPoint().Equal(child2.PublicPoint()) {
		t.Fatal("P1 and P2 disagree on derived child public key")
	}

	mk1.Destroy()
	mk2.Destroy()
	if !priv1.X1.IsZero() || !priv2.X2.IsZero() {
		t.Fatal("Destroy did not scrub the share scalars")
	}
}

const (
	testSegmentSize = 8
	testNumSegments = 32
)

func TestRecoverECDSAParty1FromBackup(t *testing.T) {
	pub, priv1, _ := runECDSAKeyGen(t)
	cc := sampleChainCode()
	mk1 := masterkey.NewECDSAParty1(priv1, pub, cc)

	y, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar failed: %v", err)
	}
	Y := curve.ScalarBaseMult(y)

	ct, proof, err := mk1.Backup(testSegmentSize, testNumSegments, Y)
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
	if err := proof.Verify(ct, Y, pub.P1); err != nil {
		t.Fatalf("backup proof failed to verify: %v", err)
	}

	recovered, err := masterkey.RecoverECDSAParty1(ct, y, pub, cc)
	if err != nil {
		t.Fatalf("RecoverECDSAParty1 failed: %v", err)
	}
	if !recovered.PublicPoint().Equal(pub.Q) {
		t.Fatal("recovered MasterKey(P1) has the wrong public key")
	}
	if recovered.Priv.PaillierKey == nil {
		t.Fatal("recovered MasterKey(P1) must have fresh Paillier material")
	}
}

func TestRecoverECDSAParty1PartialRequiresForcedRotation(t *testing.T) {
	pub, priv1, priv2 := runECDSAKeyGen(t)
	cc := sampleChainCode()
	mk1 := masterkey.NewECDSAParty1(priv1, pub, cc)

	y, _ := curve.RandomScalar()
	Y := curve.ScalarBaseMult(y)
	ct, _, err := mk1.Backup(testSegmentSize, testNumSegments, Y)
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}

	partial, err := masterkey.RecoverECDSAParty1Partial(ct, y, pub, cc)
	if err != nil {
		t.Fatalf("RecoverECDSAParty1Partial failed: %v", err)
	}
	if partial.Priv.PaillierKey != nil {
		t.Fatal("partial recovery must not have Paillier material yet")
	}

	r := runCoinFlip(t)
	rp1, err := partial.Rotator(r)
	if err != nil {
		t.Fatalf("forced-rotation Rotator failed: %v", err)
	}
	mk2 := masterkey.NewECDSAParty2(priv2, pub, cc)
	rp2, err := mk2.Rotator(r)
	if err != nil {
		t.Fatalf("Rotator failed: %v", err)
	}
	msg1, err := rp1.FirstMessage()
	if err != nil {
		t.Fatalf("FirstMessage failed: %v", err)
	}
	cTag, err := rp2.SecondMessage(msg1)
	if err != nil {
		t.Fatalf("SecondMessage failed: %v", err)
	}
	com, err := rp1.ThirdMessage(cTag)
	if err != nil {
		t.Fatalf("ThirdMessage failed: %v", err)
	}
	reveal := rp2.ThirdMessage(com)
	opening := rp1.FourthMessage(reveal, pub.P1)
	if err := rp2.Verify(opening); err != nil {
		t.Fatalf("forced rotation Verify failed: %v", err)
	}

	recovered := masterkey.NewECDSAParty1FromRotation(rp1, cc)
	if recovered.Priv.PaillierKey == nil {
		t.Fatal("forced rotation must leave MasterKey(P1) with fresh Paillier material")
	}
}

func TestRecoverECDSAParty2SelfRecovery(t *testing.T) {
	pub, _, priv2 := runECDSAKeyGen(t)
	cc := sampleChainCode()
	mk2 := masterkey.NewECDSAParty2(priv2, pub, cc)

	y, _ := curve.RandomScalar()
	Y := curve.ScalarBaseMult(y)
	ct, proof, err := mk2.Backup(testSegmentSize, testNumSegments, Y)
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
	if err := proof.Verify(ct, Y, pub.P2); err != nil {
		t.Fatalf("backup proof failed to verify: %v", err)
	}

	recovered, err := masterkey.RecoverECDSAParty2(ct, y, pub, cc)
	if err != nil {
		t.Fatalf("RecoverECDSAParty2 failed: %v", err)
	}
	if !recovered.PublicPoint().Equal(pub.Q) {
		t.Fatal("recovered MasterKey(P2) has the wrong public key")
	}
}

func TestRecoverSchnorrRoundTrips(t *testing.T) {
	pub, priv1, priv2 := runSchnorrKeyGen(t)
	cc := sampleChainCode()
	mk1 := masterkey.NewSchnorrParty1(priv1, pub, cc)
	mk2 := masterkey.NewSchnorrParty2(priv2, pub, cc)

	y, _ := curve.RandomScalar()
	Y := curve.ScalarBaseMult(y)

	ct1, proof1, err := mk1.Backup(testSegmentSize, testNumSegments, Y)
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
	if err := proof1.Verify(ct1, Y, pub.I1); err != nil {
		t.Fatalf("proof1 failed to verify: %v", err)
	}
	recovered1, err := masterkey.RecoverSchnorrParty1(ct1, y, pub, cc)
	if err != nil {
		t.Fatalf("RecoverSchnorrParty1 failed: %v", err)
	}
	if !recovered1.PublicPoint().Equal(pub.Q) {
		t.Fatal("recovered MasterKey(P1) has the wrong public key")
	}

	ct2, proof2, err := mk2.Backup(testSegmentSize, testNumSegments, Y)
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
	if err := proof2.Verify(ct2, Y, pub.I2); err != nil {
		t.Fatalf("proof2 failed to verify: %v", err)
	}
	recovered2, err := masterkey.RecoverSchnorrParty2(ct2, y, pub, cc)
	if err != nil {
		t.Fatalf("RecoverSchnorrParty2 failed: %v", err)
	}
	if !recovered2.PublicPoint().Equal(pub.Q) {
		t.Fatal("recovered MasterKey(P2) has the wrong public key")
	}
}
