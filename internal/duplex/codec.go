package duplex

import (
	"context"

	"github.com/fxamacker/cbor/v2"
)

// SendValue CBOR-encodes v and sends it to the peer endpoint, matching the
// module-wide requirement that every wire message round-trips through
// cbor.Marshal/Unmarshal.
func (e *Endpoint) SendValue(ctx context.Context, v any) error {
	buf, err := cbor.Marshal(v)
	if err != nil {
		return err
	}
	return e.Send(ctx, buf)
}

// ReceiveValue blocks for the peer's next message and CBOR-decodes it into
// out, which must be a pointer.
func (e *Endpoint) ReceiveValue(ctx context.Context, out any) error {
	buf, err := e.Receive(ctx)
	if err != nil {
		return err
	}
	return cbor.Unmarshal(buf, out)
}
