package lights

import "testing"

func TestPackRoundTrip(t *testing.T) {
	buf := make([]byte, PackedSize)
	for _, x := range []int{0, 1, 5, 1023, 2047} {
		for _, y := range []int{0, 3, 128, 255} {
			for _, z := range []int{0, 2, 17, 31} {
				want := Coord3D{x, y, z}
				Pack(buf, want)
				if got := Unpack(buf); got != want {
					t.Errorf("Unpack(Pack(%v)) = %v", want, got)
				}
			}
		}
	}
}

func TestPackLayout(t *testing.T) {
	buf := make([]byte, PackedSize)
	Pack(buf, Coord3D{X: 5, Y: 3, Z: 2})
	// 5<<13 | 3<<5 | 2 = 0x00A062
	want := []byte{0x00, 0xA0, 0x62}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("Pack bytes = % x, want % x", buf, want)
		}
	}

	Pack(buf, Coord3D{X: 2047, Y: 255, Z: 31})
	for i, b := range buf {
		if b != 0xFF {
			t.Errorf("byte %d = %#x, want 0xff", i, b)
		}
	}
}

func TestPackTruncates(t *testing.T) {
	tests := []struct {
		in   Coord3D
		want Coord3D
	}{
		{Coord3D{2048, 0, 0}, Coord3D{0, 0, 0}},
		{Coord3D{2049, 256, 32}, Coord3D{1, 0, 0}},
		{Coord3D{4095, 300, 40}, Coord3D{2047, 44, 8}},
		{Coord3D{-1, -1, -1}, Coord3D{2047, 255, 31}},
	}
	buf := make([]byte, PackedSize)
	for _, tt := range tests {
		Pack(buf, tt.in)
		if got := Unpack(buf); got != tt.want {
			t.Errorf("Unpack(Pack(%v)) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCoord3D(t *testing.T) {
	a := Coord3D{1, 7, 2}
	b := Coord3D{4, 3, 2}
	if got := a.Max(b); got != (Coord3D{4, 7, 2}) {
		t.Errorf("Max = %v", got)
	}
	if got := a.Add(Unit); got != (Coord3D{2, 8, 3}) {
		t.Errorf("Add = %v", got)
	}
	if got := (Coord3D{2, 3, 4}).Volume(); got != 24 {
		t.Errorf("Volume = %d, want 24", got)
	}
	if got := (Coord3D{2, 0, 4}).Volume(); got != 0 {
		t.Errorf("Volume with zero axis = %d, want 0", got)
	}
	if !(Coord3D{1, 1, 0}).Within(Coord3D{2, 2, 1}) {
		t.Error("Within should include interior point")
	}
	if (Coord3D{2, 1, 0}).Within(Coord3D{2, 2, 1}) {
		t.Error("Within should exclude the size boundary")
	}
}

func TestBuffer(t *testing.T) {
	b := NewBuffer(10) // 3 positions fit
	if b.PositionCap() != 3 {
		t.Fatalf("PositionCap = %d, want 3", b.PositionCap())
	}
	for i := 0; i < 3; i++ {
		if !b.PutPosition(i, Coord3D{i, i, i}) {
			t.Errorf("PutPosition(%d) = false", i)
		}
	}
	if b.PutPosition(3, Coord3D{9, 9, 9}) {
		t.Error("PutPosition beyond capacity should report false")
	}
	if got := b.Position(2); got != (Coord3D{2, 2, 2}) {
		t.Errorf("Position(2) = %v", got)
	}
	if b.Bytes()[9] != 0 {
		t.Error("tail byte beyond the last slot must stay untouched")
	}

	if got := b.Light(3, 3); got != nil {
		t.Errorf("Light(3,3) = %v, want nil", got)
	}
	if got := len(b.Light(2, 3)); got != 3 {
		t.Errorf("len(Light(2,3)) = %d, want 3", got)
	}

	b.Clear()
	for i, v := range b.Bytes() {
		if v != 0 {
			t.Fatalf("byte %d = %d after Clear", i, v)
		}
	}
}

func TestParseColorOrder(t *testing.T) {
	tests := []struct {
		in      string
		want    Offsets
		wantErr bool
	}{
		{"RGB", DefaultOffsets, false},
		{"grb", Offsets{Red: 1, Green: 0, Blue: 2}, false},
		{"BGR", Offsets{Red: 2, Green: 1, Blue: 0}, false},
		{"RRB", Offsets{}, true},
		{"RGBW", Offsets{}, true},
		{"XYZ", Offsets{}, true},
	}
	for _, tt := range tests {
		got, err := ParseColorOrder(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColorOrder(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseColorOrder(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
