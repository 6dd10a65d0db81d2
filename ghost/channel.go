package ghost

import (
	"github.com/golang/snappy"

	liszt "github.com/clemire/liszt-in-terra"
	"github.com/clemire/liszt-in-terra/errors"
)

// ID packs a per-axis neighbor offset, each component in {-1, 0, 1},
// into the ghost_id space [0, 3^d) from §4.G: axis a contributes
// (offset[a]+1) * 3^a. The zero offset (the node's own interior) packs
// to the center id, (3^d-1)/2.
func ID(offset []int) int {
	id, mul := 0, 1
	for _, o := range offset {
		if o < -1 || o > 1 {
			panic("ghost: offset component out of {-1,0,1}")
		}
		id += (o + 1) * mul
		mul *= 3
	}
	return id
}

// Buffer is one field's wire payload for one neighbor direction: the
// halo row ids it covers, in order, plus their packed bytes.
type Buffer struct {
	FieldName string
	Rows      []int

	raw    []byte // uncompressed, width = len(raw)/len(Rows) per row
	packed []byte
}

// Gather packs field f's rows named by rows into a Buffer, in the
// order given. Only fixed-width scalar/vector/matrix fields are
// supported — Bool and KeyOf fields have no stable byte-row layout to
// gather, and neither a live mask nor a key column crosses a
// partition boundary in this runtime's protocol.
func Gather(f *liszt.Field, rows []int) *Buffer {
	b := &Buffer{FieldName: f.Name, Rows: append([]int(nil), rows...)}
	if len(rows) == 0 {
		return b
	}
	width := len(f.RawBytes(0, 1))
	b.raw = make([]byte, len(rows)*width)
	for i, row := range rows {
		copy(b.raw[i*width:(i+1)*width], f.RawBytes(row, row+1))
	}
	return b
}

// Scatter writes buf's rows back into field f at the row ids buf.Rows
// names, in order — the receiving side of a gather on the paired
// neighbor.
func Scatter(f *liszt.Field, buf *Buffer) {
	if len(buf.Rows) == 0 {
		return
	}
	width := len(buf.raw) / len(buf.Rows)
	for i, row := range buf.Rows {
		copy(f.RawBytes(row, row+1), buf.raw[i*width:(i+1)*width])
	}
}

// pack compresses buf's raw bytes for transfer. Ghost buffers are
// small, boundary-only slices of field data re-sent every launch, so
// even a fast, low-ratio codec like snappy's meaningfully cuts
// cross-node bytes for the common case of a mostly-uniform halo
// (constant boundary conditions, near-converged diffusion fields).
func (b *Buffer) pack() []byte {
	b.packed = snappy.Encode(b.packed[:0], b.raw)
	return b.packed
}

func unpack(fieldName string, rows []int, packed []byte) (*Buffer, error) {
	raw, err := snappy.Decode(nil, packed)
	if err != nil {
		return nil, errors.E("ghost_recv", errors.Protocol, fieldName, err)
	}
	return &Buffer{FieldName: fieldName, Rows: rows, raw: raw, packed: packed}, nil
}

// Channel is one neighbor direction's gather/send/recv/scatter
// transport, identified by the ghost_id its offset packs into.
// In-process (single-node-simulating-distributed) use pairs two
// Channels with NewChannelPair.
type Channel struct {
	GhostID int

	out chan []byte
	in  chan []byte
}

// NewChannelPair returns two Channels sharing the same ghost_id, each
// one neighbor's view of the boundary between them: a's out feeds b's
// in and vice versa.
func NewChannelPair(id int) (a, b *Channel) {
	ab := make(chan []byte, 1)
	ba := make(chan []byte, 1)
	a = &Channel{GhostID: id, out: ab, in: ba}
	b = &Channel{GhostID: id, out: ba, in: ab}
	return a, b
}

// Send packs buf and transmits it on the channel. It blocks until the
// paired Channel's Recv drains the previous send, matching the
// spec's single-outstanding-buffer-per-direction model.
func (c *Channel) Send(buf *Buffer) {
	c.out <- buf.pack()
}

// Recv blocks for the next buffer sent on the paired Channel and
// unpacks it as fieldName covering rows; the buffer's own field is not
// checked against fieldName.
func (c *Channel) Recv(fieldName string, rows []int) (*Buffer, error) {
	packed := <-c.in
	return unpack(fieldName, rows, packed)
}
