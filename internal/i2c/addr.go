// Package i2c is a minimal Linux I2C master over /dev/i2c-N.
package i2c

import "fmt"

// BusPath returns the character device for bus n.
func BusPath(n int) string { return fmt.Sprintf("/dev/i2c-%d", n) }

// ValidAddr rejects the general-call address and anything outside 7 bits.
func ValidAddr(addr uint16) error {
	if addr == 0 || addr > 0x7F {
		return fmt.Errorf("i2c: invalid addr 0x%X", addr)
	}
	return nil
}

// BigEndianI16 decodes b[0:2] as a signed high-byte-first word.
func BigEndianI16(b []byte) int16 {
	return int16(uint16(b[0])<<8 | uint16(b[1]))
}
