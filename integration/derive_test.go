package integration_test

import (
	"context"
	"math/big"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mpc-kms/secp256k1/protocols/derive"
)

var _ = Describe("S2: child + sign", func() {
	It("derives a child key both parties agree on and signs under it", func() {
		ctx := context.Background()
		pub, priv1, priv2, err := runECDSAKeyGen(ctx)
		Expect(err).NotTo(HaveOccurred())

		cc1, cc2, err := runChainCode(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(cc1.Value).To(Equal(cc2.Value))

		path := []*big.Int{big.NewInt(10), big.NewInt(5)}
		res1, err := derive.Derive(derive.VariantECDSA, path, pub.Q, cc1)
		Expect(err).NotTo(HaveOccurred())
		res2, err := derive.Derive(derive.VariantECDSA, path, pub.Q, cc2)
		Expect(err).NotTo(HaveOccurred())
		Expect(res1.Q.Equal(res2.Q)).To(BeTrue())

		childPub := derive.ApplyECDSAParty1(priv1, pub, res1)
		childPriv2, childPub2 := derive.ApplyECDSAParty2(priv2, pub, res2)
		Expect(childPub.Q.Equal(childPub2.Q)).To(BeTrue())

		m := big.NewInt(1234)
		sig, err := runECDSASign(ctx, childPub, priv1, childPriv2, m)
		Expect(err).NotTo(HaveOccurred())
		Expect(sig.R.Sign()).NotTo(BeZero())
	})
})
