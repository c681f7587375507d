package lights

// Buffer is the fixed-capacity physical channel buffer. During layout it
// holds packed positions, at runtime it holds channel data.
type Buffer struct {
	data []byte
}

// NewBuffer allocates a zeroed buffer of capacity bytes.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{data: make([]byte, max(capacity, 0))}
}

// Cap returns the buffer capacity in bytes.
func (b *Buffer) Cap() int { return len(b.data) }

// PositionCap returns how many packed positions fit in the buffer.
func (b *Buffer) PositionCap() int { return len(b.data) / PackedSize }

// Clear zeroes every byte.
func (b *Buffer) Clear() { clear(b.data) }

// PutPosition packs pos into slot i. It reports false, writing nothing, when
// the slot lies beyond capacity.
func (b *Buffer) PutPosition(i int, pos Coord3D) bool {
	if i < 0 || i >= b.PositionCap() {
		return false
	}
	Pack(b.data[i*PackedSize:], pos)
	return true
}

// Position decodes slot i.
func (b *Buffer) Position(i int) Coord3D {
	return Unpack(b.data[i*PackedSize:])
}

// Light returns the channel block of light i, or nil when it does not fit.
func (b *Buffer) Light(i, channelsPerLight int) []byte {
	start := i * channelsPerLight
	if i < 0 || channelsPerLight <= 0 || start+channelsPerLight > len(b.data) {
		return nil
	}
	return b.data[start : start+channelsPerLight]
}

// Bytes exposes the raw buffer, e.g. for a driver that ships it to hardware.
func (b *Buffer) Bytes() []byte { return b.data }
