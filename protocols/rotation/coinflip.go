package rotation

import (
	"context"
	"math/big"

	"github.com/zeebo/blake3"

	"github.com/mpc-kms/secp256k1/pkg/curve"
	"github.com/mpc-kms/secp256k1/pkg/logging"
	"github.com/mpc-kms/secp256k1/protocols/ecdh"
)

const coinFlipLabel = "kms-secp256k1/rotation/coinflip/v1"

// CoinFlipParty1 and CoinFlipParty2 drive the two-round commit-and-reveal
// coin flip that produces the shared rotation factor r (spec §4.6). This
// reuses protocols/ecdh's commit-then-reveal/DLog-proof exchange with the
// additive Combine rather than reproducing curv's dedicated
// coin_flip_optimal_rounds construction (not present in the retrieved
// source's dependency set): each party's contribution is a random scalar
// bound to a DLog proof exactly as protocols/ecdh already generalizes, and
// the final r is a BLAKE3 hash of the joint point reduced mod q, since a
// rotation factor must be a scalar rather than a curve point.
type CoinFlipParty1 struct {
	logger logging.Logger
	ecdh   *ecdh.Initiator
}

// NewCoinFlipParty1 starts P1's side of the coin flip. loggers takes an
// optional Logger; when omitted the coin flip logs nothing.
func NewCoinFlipParty1(loggers ...logging.Logger) (*CoinFlipParty1, error) {
	log := logging.First(loggers...)
	i, err := ecdh.NewInitiator([]byte(coinFlipLabel), log)
	if err != nil {
		return nil, err
	}
	return &CoinFlipParty1{logger: log, ecdh: i}, nil
}

// FirstMessage is P1's round-1 commitment.
func (c *CoinFlipParty1) FirstMessage() (*ecdh.FirstMessage, error) {
	return c.ecdh.FirstMessage()
}

// SecondMessage verifies P2's contribution and decommits P1's own.
func (c *CoinFlipParty1) SecondMessage(peer *ecdh.SecondMessage) (*ecdh.Decommitment, error) {
	if err := c.ecdh.VerifyPeer(peer, []byte(coinFlipLabel)); err != nil {
		c.logger.Warn(context.Background(), "rotation: p1 coin flip aborted", "reason", err)
		return nil, err
	}
	return c.ecdh.SecondMessage()
}

// Result derives the shared rotation factor from P2's verified public
// point.
func (c *CoinFlipParty1) Result(peerPublic *curve.Point) *curve.Scalar {
	c.logger.Debug(context.Background(), "rotation: p1 coin flip done")
	return scalarFromJoint(c.ecdh.Combine(peerPublic, ecdh.AddCombine))
}

// CoinFlipParty2 drives the responder side of the coin flip.
type CoinFlipParty2 struct {
	logger logging.Logger
	ecdh   *ecdh.Responder
}

// NewCoinFlipParty2 starts P2's side of the coin flip. loggers takes an
// optional Logger; when omitted the coin flip logs nothing.
func NewCoinFlipParty2(loggers ...logging.Logger) (*CoinFlipParty2, error) {
	log := logging.First(loggers...)
	r, err := ecdh.NewResponder([]byte(coinFlipLabel), log)
	if err != nil {
		return nil, err
	}
	return &CoinFlipParty2{logger: log, ecdh: r}, nil
}

// FirstMessage broadcasts P2's contribution in the clear.
func (c *CoinFlipParty2) FirstMessage() *ecdh.SecondMessage {
	return c.ecdh.Message()
}

// Verify checks P1's commitment and decommitment.
func (c *CoinFlipParty2) Verify(first *ecdh.FirstMessage, decom *ecdh.Decommitment) error {
	if err := c.ecdh.Verify(first, decom, []byte(coinFlipLabel)); err != nil {
		c.logger.Warn(context.Background(), "rotation: p2 coin flip aborted", "reason", err)
		return err
	}
	return nil
}

// Result derives the shared rotation factor from P1's verified public
// point. Called only after Verify has succeeded.
func (c *CoinFlipParty2) Result(peerPublic *curve.Point) *curve.Scalar {
	c.logger.Debug(context.Background(), "rotation: p2 coin flip done")
	return scalarFromJoint(c.ecdh.Combine(peerPublic, ecdh.AddCombine))
}

func scalarFromJoint(joint *curve.Point) *curve.Scalar {
	h := blake3.New()
	_, _ = h.Write([]byte(coinFlipLabel))
	_, _ = h.Write(joint.Compressed())
	sum := h.Sum(nil)
	return curve.NewScalarFromBigInt(new(big.Int).SetBytes(sum))
}
