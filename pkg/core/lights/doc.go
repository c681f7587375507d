// Package lights defines the physical light model shared by every layer:
// 3D coordinates, the packed position codec, the layout header and the
// fixed-capacity channel buffer.
//
// # Packed Positions
//
// During pass 1 of a layout cycle each physical light's position is packed
// into 3 bytes of the channel buffer so a consumer (a UI, a preview) can read
// the whole installation without a second allocation:
//
//	bits 23..13  x (11 bits, 0-2047)
//	bits 12..5   y (8 bits, 0-255)
//	bits  4..0   z (5 bits, 0-31)
//
// Out-of-range components are truncated to their low bits, never saturated.
package lights
