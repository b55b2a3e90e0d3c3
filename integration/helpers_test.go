package integration_test

import (
	"context"
	"math/big"

	"golang.org/x/sync/errgroup"

	"github.com/mpc-kms/secp256k1/internal/duplex"
	"github.com/mpc-kms/secp256k1/pkg/curve"
	"github.com/mpc-kms/secp256k1/pkg/paillier"
	"github.com/mpc-kms/secp256k1/pkg/zk"
	"github.com/mpc-kms/secp256k1/protocols/chaincode"
	"github.com/mpc-kms/secp256k1/protocols/ecdh"
	"github.com/mpc-kms/secp256k1/protocols/ecdsa2p"
	"github.com/mpc-kms/secp256k1/protocols/rotation"
	"github.com/mpc-kms/secp256k1/protocols/schnorr2p"
)

// runECDSAKeyGen drives a full S3 ECDSA key-generation round between two
// goroutines connected by a duplex pair, exactly mirroring the message
// order protocols/ecdsa2p's own test helper drives in-process.
func runECDSAKeyGen(ctx context.Context) (pub *ecdsa2p.KeyGenResult, priv1 *ecdsa2p.Party1Private, priv2 *ecdsa2p.Party2Private, err error) {
	p1ep, p2ep := duplex.New()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p1, err := ecdsa2p.NewKeyGenP1()
		if err != nil {
			return err
		}
		first1, err := p1.FirstMessage()
		if err != nil {
			return err
		}
		if err := p1ep.SendValue(ctx, first1); err != nil {
			return err
		}

		var second2 ecdh.SecondMessage
		if err := p1ep.ReceiveValue(ctx, &second2); err != nil {
			return err
		}
		msg2, err := p1.SecondMessage(&second2)
		if err != nil {
			return err
		}
		if err := p1ep.SendValue(ctx, msg2); err != nil {
			return err
		}

		var cTag paillier.Ciphertext
		if err := p1ep.ReceiveValue(ctx, &cTag); err != nil {
			return err
		}
		com, err := p1.ThirdMessage(&cTag)
		if err != nil {
			return err
		}
		if err := p1ep.SendValue(ctx, com); err != nil {
			return err
		}

		var reveal zk.PDLReveal
		if err := p1ep.ReceiveValue(ctx, &reveal); err != nil {
			return err
		}
		opening, err := p1.FourthMessage(&reveal)
		if err != nil {
			return err
		}
		if err := p1ep.SendValue(ctx, opening); err != nil {
			return err
		}

		pub, priv1 = p1.Result(), p1.Private()
		return nil
	})

	g.Go(func() error {
		p2, err := ecdsa2p.NewKeyGenP2()
		if err != nil {
			return err
		}
		second2 := p2.FirstMessage()
		if err := p2ep.SendValue(ctx, second2); err != nil {
			return err
		}

		var first1 ecdh.FirstMessage
		if err := p2ep.ReceiveValue(ctx, &first1); err != nil {
			return err
		}
		var msg2 ecdsa2p.Message2
		if err := p2ep.ReceiveValue(ctx, &msg2); err != nil {
			return err
		}
		cTag, err := p2.SecondMessage(&first1, &msg2)
		if err != nil {
			return err
		}
		if err := p2ep.SendValue(ctx, cTag); err != nil {
			return err
		}

		var com zk.PDLCommitment
		if err := p2ep.ReceiveValue(ctx, &com); err != nil {
			return err
		}
		reveal := p2.ThirdMessage(&com)
		if err := p2ep.SendValue(ctx, reveal); err != nil {
			return err
		}

		var opening zk.PDLOpening
		if err := p2ep.ReceiveValue(ctx, &opening); err != nil {
			return err
		}
		if err := p2.Verify(&opening); err != nil {
			return err
		}

		priv2 = p2.Private()
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return pub, priv1, priv2, nil
}

// runECDSASign drives S5's ECDSA signing path over duplex, mirroring
// protocols/ecdsa2p's own test helper's message order.
func runECDSASign(ctx context.Context, pub *ecdsa2p.KeyGenResult, priv1 *ecdsa2p.Party1Private, priv2 *ecdsa2p.Party2Private, m *big.Int) (sig *ecdsa2p.Signature, err error) {
	p1ep, p2ep := duplex.New()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		signer1, err := ecdsa2p.NewParty1Signer(priv1, pub.Q)
		if err != nil {
			return err
		}
		eph1, err := signer1.EphMessage()
		if err != nil {
			return err
		}
		if err := p1ep.SendValue(ctx, eph1); err != nil {
			return err
		}

		var eph2 ecdh.FirstMessage
		if err := p1ep.ReceiveValue(ctx, &eph2); err != nil {
			return err
		}
		var partial ecdsa2p.PartialSigMessage
		if err := p1ep.ReceiveValue(ctx, &partial); err != nil {
			return err
		}
		sig, err = signer1.Sign(&eph2, &partial, m)
		return err
	})

	g.Go(func() error {
		signer2, err := ecdsa2p.NewParty2Signer(priv2, pub)
		if err != nil {
			return err
		}
		eph2, err := signer2.EphFirstMessage()
		if err != nil {
			return err
		}
		if err := p2ep.SendValue(ctx, eph2); err != nil {
			return err
		}

		var eph1 ecdh.SecondMessage
		if err := p2ep.ReceiveValue(ctx, &eph1); err != nil {
			return err
		}
		partial, err := signer2.PartialSign(&eph1, m)
		if err != nil {
			return err
		}
		return p2ep.SendValue(ctx, partial)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sig, nil
}

// runSchnorrKeyGen drives a full S4 Schnorr key-generation round over
// duplex.
func runSchnorrKeyGen(ctx context.Context) (pub *schnorr2p.KeyGenResult, priv1 *schnorr2p.Party1Private, priv2 *schnorr2p.Party2Private, err error) {
	p1ep, p2ep := duplex.New()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p1, err := schnorr2p.NewKeyGenParty1()
		if err != nil {
			return err
		}
		first1, err := p1.FirstMessage()
		if err != nil {
			return err
		}
		if err := p1ep.SendValue(ctx, first1); err != nil {
			return err
		}

		var second2 ecdh.SecondMessage
		if err := p1ep.ReceiveValue(ctx, &second2); err != nil {
			return err
		}
		decom1, err := p1.SecondMessage(&second2)
		if err != nil {
			return err
		}
		if err := p1ep.SendValue(ctx, decom1); err != nil {
			return err
		}

		pub, priv1 = p1.Result(second2.Public), p1.Private()
		return nil
	})

	g.Go(func() error {
		p2, err := schnorr2p.NewKeyGenParty2()
		if err != nil {
			return err
		}
		second2 := p2.FirstMessage()
		if err := p2ep.SendValue(ctx, second2); err != nil {
			return err
		}

		var first1 ecdh.FirstMessage
		if err := p2ep.ReceiveValue(ctx, &first1); err != nil {
			return err
		}
		var decom1 ecdh.Decommitment
		if err := p2ep.ReceiveValue(ctx, &decom1); err != nil {
			return err
		}
		if err := p2.Verify(&first1, &decom1); err != nil {
			return err
		}

		priv2 = p2.Private()
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return pub, priv1, priv2, nil
}

// runSchnorrSign drives S5's Schnorr signing path over duplex.
func runSchnorrSign(ctx context.Context, pub *schnorr2p.KeyGenResult, priv1 *schnorr2p.Party1Private, priv2 *schnorr2p.Party2Private, m *big.Int) (sig *schnorr2p.Signature, err error) {
	p1ep, p2ep := duplex.New()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		signer1, err := schnorr2p.NewParty1Signer(priv1, pub.Q)
		if err != nil {
			return err
		}
		first1, err := signer1.EphFirstMessage()
		if err != nil {
			return err
		}
		if err := p1ep.SendValue(ctx, first1); err != nil {
			return err
		}

		var second2 ecdh.SecondMessage
		if err := p1ep.ReceiveValue(ctx, &second2); err != nil {
			return err
		}
		partial, err := signer1.PartialSign(&second2, m)
		if err != nil {
			return err
		}
		if err := p1ep.SendValue(ctx, partial); err != nil {
			return err
		}

		var reply schnorr2p.PartialSigReply
		if err := p1ep.ReceiveValue(ctx, &reply); err != nil {
			return err
		}
		sig, err = signer1.Finalize(&reply, m)
		return err
	})

	g.Go(func() error {
		signer2, err := schnorr2p.NewParty2Signer(priv2, pub)
		if err != nil {
			return err
		}

		var first1 ecdh.FirstMessage
		if err := p2ep.ReceiveValue(ctx, &first1); err != nil {
			return err
		}
		second2 := signer2.EphMessage()
		if err := p2ep.SendValue(ctx, second2); err != nil {
			return err
		}

		var partial schnorr2p.PartialSig
		if err := p2ep.ReceiveValue(ctx, &partial); err != nil {
			return err
		}
		_, reply, err := signer2.Sign(&first1, &partial, m)
		if err != nil {
			return err
		}
		return p2ep.SendValue(ctx, reply)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sig, nil
}

// runECDSARotate drives S6's ECDSA rotation round over duplex.
func runECDSARotate(ctx context.Context, priv1 *ecdsa2p.Party1Private, priv2 *ecdsa2p.Party2Private, pub *ecdsa2p.KeyGenResult, r *curve.Scalar) (rotated1 *ecdsa2p.KeyGenResult, newPriv1 *ecdsa2p.Party1Private, newPriv2 *ecdsa2p.Party2Private, err error) {
	p1ep, p2ep := duplex.New()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rp1, err := rotation.NewECDSARotateParty1(priv1, pub, r)
		if err != nil {
			return err
		}
		msg1, err := rp1.FirstMessage()
		if err != nil {
			return err
		}
		if err := p1ep.SendValue(ctx, msg1); err != nil {
			return err
		}

		var cTag paillier.Ciphertext
		if err := p1ep.ReceiveValue(ctx, &cTag); err != nil {
			return err
		}
		com, err := rp1.ThirdMessage(&cTag)
		if err != nil {
			return err
		}
		if err := p1ep.SendValue(ctx, com); err != nil {
			return err
		}

		var reveal zk.PDLReveal
		if err := p1ep.ReceiveValue(ctx, &reveal); err != nil {
			return err
		}
		opening := rp1.FourthMessage(&reveal, pub.P1)
		if err := p1ep.SendValue(ctx, opening); err != nil {
			return err
		}

		rotated1, newPriv1 = rp1.Result(), rp1.Private()
		return nil
	})

	g.Go(func() error {
		rp2, err := rotation.NewECDSARotateParty2(priv2, pub, r)
		if err != nil {
			return err
		}

		var msg1 rotation.ECDSAMessage1
		if err := p2ep.ReceiveValue(ctx, &msg1); err != nil {
			return err
		}
		cTag, err := rp2.SecondMessage(&msg1)
		if err != nil {
			return err
		}
		if err := p2ep.SendValue(ctx, cTag); err != nil {
			return err
		}

		var com zk.PDLCommitment
		if err := p2ep.ReceiveValue(ctx, &com); err != nil {
			return err
		}
		reveal := rp2.ThirdMessage(&com)
		if err := p2ep.SendValue(ctx, reveal); err != nil {
			return err
		}

		var opening zk.PDLOpening
		if err := p2ep.ReceiveValue(ctx, &opening); err != nil {
			return err
		}
		if err := rp2.Verify(&opening); err != nil {
			return err
		}

		newPriv2 = rp2.Private()
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return rotated1, newPriv1, newPriv2, nil
}

// runCoinFlip drives S6's coin-flip agreement over duplex and returns both
// parties' computed scalar, which must be equal.
func runCoinFlip(ctx context.Context) (r1, r2 *curve.Scalar, err error) {
	p1ep, p2ep := duplex.New()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c1, err := rotation.NewCoinFlipParty1()
		if err != nil {
			return err
		}
		first1, err := c1.FirstMessage()
		if err != nil {
			return err
		}
		if err := p1ep.SendValue(ctx, first1); err != nil {
			return err
		}

		var second2 ecdh.SecondMessage
		if err := p1ep.ReceiveValue(ctx, &second2); err != nil {
			return err
		}
		decom1, err := c1.SecondMessage(&second2)
		if err != nil {
			return err
		}
		if err := p1ep.SendValue(ctx, decom1); err != nil {
			return err
		}

		r1 = c1.Result(second2.Public)
		return nil
	})

	g.Go(func() error {
		c2, err := rotation.NewCoinFlipParty2()
		if err != nil {
			return err
		}
		second2 := c2.FirstMessage()
		if err := p2ep.SendValue(ctx, second2); err != nil {
			return err
		}

		var first1 ecdh.FirstMessage
		if err := p2ep.ReceiveValue(ctx, &first1); err != nil {
			return err
		}
		var decom1 ecdh.Decommitment
		if err := p2ep.ReceiveValue(ctx, &decom1); err != nil {
			return err
		}
		if err := c2.Verify(&first1, &decom1); err != nil {
			return err
		}

		r2 = c2.Result(decom1.Public)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return r1, r2, nil
}

// runChainCode drives the chain-code agreement exchange (spec's ECDH-based
// "Global" shared value) over duplex and returns both parties' result,
// which must agree.
func runChainCode(ctx context.Context) (cc1, cc2 *chaincode.ChainCode, err error) {
	p1ep, p2ep := duplex.New()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p1, err := chaincode.NewParty1()
		if err != nil {
			return err
		}
		first1, err := p1.FirstMessage()
		if err != nil {
			return err
		}
		if err := p1ep.SendValue(ctx, first1); err != nil {
			return err
		}

		var second2 ecdh.SecondMessage
		if err := p1ep.ReceiveValue(ctx, &second2); err != nil {
			return err
		}
		decom1, err := p1.SecondMessage()
		if err != nil {
			return err
		}
		if err := p1ep.SendValue(ctx, decom1); err != nil {
			return err
		}

		cc1 = p1.ComputeChainCode(second2.Public)
		return nil
	})

	g.Go(func() error {
		p2, err := chaincode.NewParty2()
		if err != nil {
			return err
		}
		second2 := p2.FirstMessage()
		if err := p2ep.SendValue(ctx, second2); err != nil {
			return err
		}

		var first1 ecdh.FirstMessage
		if err := p2ep.ReceiveValue(ctx, &first1); err != nil {
			return err
		}
		var decom1 ecdh.Decommitment
		if err := p2ep.ReceiveValue(ctx, &decom1); err != nil {
			return err
		}
		if err := p2.Verify(&first1, &decom1); err != nil {
			return err
		}

		cc2 = p2.ComputeChainCode(decom1.Public)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return cc1, cc2, nil
}
