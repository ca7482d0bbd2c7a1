package packet

import (
	"fmt"

	"github.com/johannes-kuhfuss/services_utils/logger"

	"github.com/emberplus/emberplus/internal/hexdump"
	"github.com/emberplus/emberplus/s101"
)

// Reassembler concatenates single/first/middle/last packet fragments back
// into a complete Glow payload, per connection, per spec's reassembly
// table: anomalies discard the partial buffer with a warning rather than
// failing the connection.
type Reassembler struct {
	buf [][]byte
}

// Feed pushes one packet into the reassembler. ready is true exactly when
// complete holds a fully reassembled payload.
func (r *Reassembler) Feed(p Packet) (complete []byte, ready bool) {
	switch p.Flag {
	case s101.FlagEmptyPacket:
		return nil, false

	case s101.FlagSinglePacket:
		if len(r.buf) != 0 {
			logger.Debug(fmt.Sprintf("discarding partial message: single packet arrived mid-reassembly, dropped %s", hexdump.Format(r.flatten())))
			r.buf = nil
		}

		return append([]byte(nil), p.Payload...), true

	case s101.FlagMultiPacketFirst:
		if len(r.buf) != 0 {
			logger.Debug(fmt.Sprintf("partial message dropped: first packet arrived mid-reassembly, dropped %s", hexdump.Format(r.flatten())))
			r.buf = nil
		}

		r.buf = append(r.buf, p.Payload)

		return nil, false

	case s101.FlagMultiPacket:
		if len(r.buf) == 0 {
			logger.Debug(fmt.Sprintf("dropping middle packet: no reassembly in progress, payload %s", hexdump.Format(p.Payload)))
			return nil, false
		}

		r.buf = append(r.buf, p.Payload)

		return nil, false

	case s101.FlagMultiPacketLast:
		if len(r.buf) == 0 {
			logger.Debug(fmt.Sprintf("dropping last packet: no reassembly in progress, payload %s", hexdump.Format(p.Payload)))
			return nil, false
		}

		r.buf = append(r.buf, p.Payload)

		var total int
		for _, frag := range r.buf {
			total += len(frag)
		}

		out := make([]byte, 0, total)
		for _, frag := range r.buf {
			out = append(out, frag...)
		}

		r.buf = nil

		return out, true

	default:
		logger.Debug(fmt.Sprintf("dropping packet with unrecognized position flag, payload %s", hexdump.Format(p.Payload)))
		return nil, false
	}
}

// flatten concatenates the fragments buffered so far, for logging a
// discarded partial message.
func (r *Reassembler) flatten() []byte {
	var total int
	for _, frag := range r.buf {
		total += len(frag)
	}

	out := make([]byte, 0, total)
	for _, frag := range r.buf {
		out = append(out, frag...)
	}

	return out
}
