package i2c

import "testing"

func TestBusPath(t *testing.T) {
	if got := BusPath(1); got != "/dev/i2c-1" {
		t.Fatalf("path=%q", got)
	}
}

func TestValidAddr(t *testing.T) {
	for _, a := range []uint16{0x08, 0x68, 0x7F} {
		if err := ValidAddr(a); err != nil {
			t.Fatalf("ValidAddr(0x%X): %v", a, err)
		}
	}
	for _, a := range []uint16{0, 0x80, 0xFFFF} {
		if err := ValidAddr(a); err == nil {
			t.Fatalf("ValidAddr(0x%X) accepted", a)
		}
	}
}

func TestBigEndianI16(t *testing.T) {
	cases := []struct {
		b    []byte
		want int16
	}{
		{[]byte{0x00, 0x01}, 1},
		{[]byte{0x40, 0x00}, 16384},
		{[]byte{0xFF, 0xFF}, -1},
		{[]byte{0x80, 0x00}, -32768},
	}
	for _, tc := range cases {
		if got := BigEndianI16(tc.b); got != tc.want {
			t.Fatalf("BigEndianI16(%x)=%d want %d", tc.b, got, tc.want)
		}
	}
}
