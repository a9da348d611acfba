//go:build linux

package i2c

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Transfers go through I2C_RDWR so a register pointer write and the data read
// happen under one repeated start. The MPU-6050 loses the pointer otherwise.

const (
	flagRead  = 0x0001 // I2C_M_RD
	ioctlRdwr = 0x0707 // I2C_RDWR
)

// i2c_msg and i2c_rdwr_ioctl_data from <linux/i2c-dev.h>.
type message struct {
	addr  uint16
	flags uint16
	len   uint16
	buf   uintptr
}

type transfer struct {
	msgs  uintptr
	nmsgs uint32
}

// Bus is an open /dev/i2c-N character device. Transfers are serialized, so
// several Dev handles may share one Bus.
type Bus struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

// Open opens a bus by device path.
func Open(path string) (*Bus, error) {
	path = filepath.Clean(path)
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("i2c: open %s: %w", path, err)
	}
	return &Bus{f: f, path: path}, nil
}

// OpenNumber opens /dev/i2c-n.
func OpenNumber(n int) (*Bus, error) { return Open(BusPath(n)) }

func (b *Bus) Close() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.f == nil {
		return nil
	}
	err := b.f.Close()
	b.f = nil
	return err
}

// Dev returns a handle for the 7-bit address addr.
func (b *Bus) Dev(addr uint16) *Dev {
	if b == nil {
		return nil
	}
	return &Dev{bus: b, addr: addr}
}

// Dev is one peripheral on a Bus.
type Dev struct {
	bus  *Bus
	addr uint16
}

func (d *Dev) Write(p []byte) error {
	_, err := d.tx(p, nil)
	return err
}

func (d *Dev) WriteRead(w, r []byte) error {
	_, err := d.tx(w, r)
	return err
}

// ReadReg reads len(dst) bytes starting at reg.
func (d *Dev) ReadReg(reg byte, dst []byte) error {
	return d.WriteRead([]byte{reg}, dst)
}

func (d *Dev) ReadRegU8(reg byte) (byte, error) {
	var b [1]byte
	if err := d.ReadReg(reg, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Dev) WriteReg(reg, value byte) error {
	return d.Write([]byte{reg, value})
}

func (d *Dev) tx(w, r []byte) (int, error) {
	if d == nil || d.bus == nil {
		return 0, errors.New("i2c: nil device")
	}
	if err := ValidAddr(d.addr); err != nil {
		return 0, err
	}

	var msgs []message
	if len(w) > 0 {
		msgs = append(msgs, message{addr: d.addr, len: uint16(len(w)), buf: uintptr(unsafe.Pointer(&w[0]))})
	}
	if len(r) > 0 {
		msgs = append(msgs, message{addr: d.addr, flags: flagRead, len: uint16(len(r)), buf: uintptr(unsafe.Pointer(&r[0]))})
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	d.bus.mu.Lock()
	defer d.bus.mu.Unlock()
	if d.bus.f == nil {
		return 0, errors.New("i2c: bus closed")
	}
	xfer := transfer{msgs: uintptr(unsafe.Pointer(&msgs[0])), nmsgs: uint32(len(msgs))}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, d.bus.f.Fd(), uintptr(ioctlRdwr), uintptr(unsafe.Pointer(&xfer)))
	if errno != 0 {
		return 0, fmt.Errorf("i2c: %s addr 0x%02X: %w", d.bus.path, d.addr, errno)
	}
	if len(r) > 0 {
		return len(r), nil
	}
	return len(w), nil
}
