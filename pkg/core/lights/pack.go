package lights

// PackedSize is the number of bytes one packed position occupies.
const PackedSize = 3

// Bit widths of the packed position fields.
const (
	xBits = 11
	yBits = 8
	zBits = 5

	xMask = 1<<xBits - 1 // 0x7FF
	yMask = 1<<yBits - 1 // 0xFF
	zMask = 1<<zBits - 1 // 0x1F
)

// Pack writes pos into the first 3 bytes of buf, most significant byte first:
//
//	packed = (x & 0x7FF) << 13 | (y & 0xFF) << 5 | (z & 0x1F)
//
// Components outside x∈[0,2047], y∈[0,255], z∈[0,31] lose their high bits.
// Pack panics if buf is shorter than [PackedSize].
func Pack(buf []byte, pos Coord3D) {
	_ = buf[2]
	packed := uint32(pos.X&xMask)<<(yBits+zBits) |
		uint32(pos.Y&yMask)<<zBits |
		uint32(pos.Z&zMask)
	buf[0] = byte(packed >> 16)
	buf[1] = byte(packed >> 8)
	buf[2] = byte(packed)
}

// Unpack decodes a position written by [Pack].
func Unpack(buf []byte) Coord3D {
	_ = buf[2]
	packed := uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2])
	return Coord3D{
		X: int(packed >> (yBits + zBits) & xMask),
		Y: int(packed >> zBits & yMask),
		Z: int(packed & zMask),
	}
}
