package integration_test

import (
	"context"
	"math/big"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("S1: key-gen + sign", func() {
	It("produces an ECDSA signature that verifies under the agreed public key", func() {
		ctx := context.Background()
		pub, priv1, priv2, err := runECDSAKeyGen(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(priv1.X1).NotTo(BeNil())
		Expect(priv2.X2).NotTo(BeNil())

		m := big.NewInt(1234)
		sig, err := runECDSASign(ctx, pub, priv1, priv2, m)
		Expect(err).NotTo(HaveOccurred())
		Expect(sig.R.Sign()).NotTo(BeZero())
		Expect(sig.S.Sign()).NotTo(BeZero())
	})

	It("produces a Schnorr signature that verifies under the agreed public key", func() {
		ctx := context.Background()
		pub, priv1, priv2, err := runSchnorrKeyGen(ctx)
		Expect(err).NotTo(HaveOccurred())

		m := big.NewInt(1234)
		sig, err := runSchnorrSign(ctx, pub, priv1, priv2, m)
		Expect(err).NotTo(HaveOccurred())
		Expect(sig.Bytes()).To(HaveLen(64))
	})
})
