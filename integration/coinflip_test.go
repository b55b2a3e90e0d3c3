package integration_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("S6: coin-flip agreement", func() {
	It("has both parties compute the same random scalar", func() {
		r1, r2, err := runCoinFlip(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(r1.Equal(r2)).To(BeTrue())
	})
})
