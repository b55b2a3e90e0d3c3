package integration_test

import (
	"context"
	"math/big"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mpc-kms/secp256k1/protocols/derive"
)

var _ = Describe("S3: rotate + sign", func() {
	It("keeps the aggregate public key fixed and signs under it after rotation", func() {
		ctx := context.Background()
		pub, priv1, priv2, err := runECDSAKeyGen(ctx)
		Expect(err).NotTo(HaveOccurred())

		r1, r2, err := runCoinFlip(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(r1.Equal(r2)).To(BeTrue())

		rotatedPub, rotatedPriv1, rotatedPriv2, err := runECDSARotate(ctx, priv1, priv2, pub, r1)
		Expect(err).NotTo(HaveOccurred())
		Expect(rotatedPub.Q.Equal(pub.Q)).To(BeTrue())

		m := big.NewInt(1234)
		sig, err := runECDSASign(ctx, rotatedPub, rotatedPriv1, rotatedPriv2, m)
		Expect(err).NotTo(HaveOccurred())
		Expect(sig.R.Sign()).NotTo(BeZero())
	})
})

var _ = Describe("S4: rotate-then-derive equals derive-then-rotate", func() {
	It("agrees on the same child public key and signs under it either way", func() {
		ctx := context.Background()
		pub, priv1, priv2, err := runECDSAKeyGen(ctx)
		Expect(err).NotTo(HaveOccurred())
		cc, _, err := runChainCode(ctx)
		Expect(err).NotTo(HaveOccurred())

		r1, r2, err := runCoinFlip(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(r1.Equal(r2)).To(BeTrue())
		path := []*big.Int{big.NewInt(10)}

		// Path A: rotate, then derive.
		rotPub, rotPriv1, rotPriv2, err := runECDSARotate(ctx, priv1, priv2, pub, r1)
		Expect(err).NotTo(HaveOccurred())
		resA, err := derive.Derive(derive.VariantECDSA, path, rotPub.Q, cc)
		Expect(err).NotTo(HaveOccurred())
		childPubA := derive.ApplyECDSAParty1(rotPriv1, rotPub, resA)
		childPriv2A, childPub2A := derive.ApplyECDSAParty2(rotPriv2, rotPub, resA)
		Expect(childPubA.Q.Equal(childPub2A.Q)).To(BeTrue())

		// Path B: derive, then rotate.
		resB, err := derive.Derive(derive.VariantECDSA, path, pub.Q, cc)
		Expect(err).NotTo(HaveOccurred())
		childPubB0 := derive.ApplyECDSAParty1(priv1, pub, resB)
		childPriv2B0, childPub2B0 := derive.ApplyECDSAParty2(priv2, pub, resB)
		Expect(childPubB0.Q.Equal(childPub2B0.Q)).To(BeTrue())

		rotChildPubB, rotChildPriv1B, rotChildPriv2B, err := runECDSARotate(ctx, priv1, childPriv2B0, childPubB0, r1)
		Expect(err).NotTo(HaveOccurred())
		Expect(rotChildPubB.Q.Equal(childPubA.Q)).To(BeTrue())

		m := big.NewInt(1234)
		sigA, err := runECDSASign(ctx, childPubA, rotPriv1, childPriv2A, m)
		Expect(err).NotTo(HaveOccurred())
		Expect(sigA.R.Sign()).NotTo(BeZero())

		sigB, err := runECDSASign(ctx, rotChildPubB, rotChildPriv1B, rotChildPriv2B, m)
		Expect(err).NotTo(HaveOccurred())
		Expect(sigB.R.Sign()).NotTo(BeZero())
	})
})
