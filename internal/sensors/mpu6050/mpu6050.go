// Package mpu6050 drives an InvenSense MPU-6050 six-axis IMU over I2C.
package mpu6050

import (
	"fmt"
	"time"

	"ipt-nav/internal/i2c"
)

var sleep = time.Sleep

const (
	// AddrDefault is the address with AD0 tied low; 0x69 with AD0 high.
	AddrDefault = 0x68
	AddrAlt     = 0x69

	regSmplrtDiv   = 0x19
	regConfig      = 0x1A
	regGyroConfig  = 0x1B
	regAccelConfig = 0x1C
	regAccelXoutH  = 0x3B // accel(6) temp(2) gyro(6)
	regPwrMgmt1    = 0x6B
	regWhoAmI      = 0x75

	whoAmIVal = 0x68 // reported regardless of AD0
	bitReset  = 0x80
	clkPLLX   = 0x01

	dlpf44Hz     = 0x03
	fsGyro250dps = 0x00
	fsAccel2g    = 0x00

	blockLen = 14
)

// Sample is one raw-scaled reading.
type Sample struct {
	Time time.Time
	// Accel in G.
	Ax, Ay, Az float64
	// Gyro in deg/s.
	Gx, Gy, Gz float64
	TempC      float64
}

type regIO interface {
	ReadRegU8(reg byte) (byte, error)
	ReadReg(reg byte, dst []byte) error
	WriteReg(reg, value byte) error
}

// Device is an initialized sensor. Not safe for concurrent Read calls.
type Device struct {
	dev regIO
	now func() time.Time

	scaleAccel float64
	scaleGyro  float64
	buf        [blockLen]byte
}

// Options tune the sample rate. Zero values pick 50 Hz.
type Options struct {
	RateHz int
}

func New(dev *i2c.Dev, opts Options) (*Device, error) {
	if dev == nil {
		return nil, fmt.Errorf("mpu6050: dev is nil")
	}
	return newWithIO(dev, opts)
}

func newWithIO(dev regIO, opts Options) (*Device, error) {
	if dev == nil {
		return nil, fmt.Errorf("mpu6050: dev is nil")
	}
	d := &Device{dev: dev, now: time.Now}

	who, err := d.dev.ReadRegU8(regWhoAmI)
	if err != nil {
		return nil, fmt.Errorf("mpu6050: whoami read failed: %w", err)
	}
	if who&0x7E != whoAmIVal {
		return nil, fmt.Errorf("mpu6050: whoami=0x%02X want 0x%02X", who, whoAmIVal)
	}
	if err := d.init(opts); err != nil {
		return nil, err
	}
	return d, nil
}

// SampleDivider returns SMPLRT_DIV for rateHz given the 1 kHz internal rate
// that applies while the low-pass filter is enabled.
func SampleDivider(rateHz int) byte {
	if rateHz <= 0 {
		rateHz = 50
	}
	if rateHz >= 1000 {
		return 0
	}
	div := 1000/rateHz - 1
	if div > 255 {
		div = 255
	}
	return byte(div)
}

func (d *Device) init(opts Options) error {
	if err := d.dev.WriteReg(regPwrMgmt1, bitReset); err != nil {
		return fmt.Errorf("mpu6050: reset failed: %w", err)
	}
	sleep(100 * time.Millisecond)

	// Leave sleep mode and clock from the X gyro PLL.
	if err := d.dev.WriteReg(regPwrMgmt1, clkPLLX); err != nil {
		return fmt.Errorf("mpu6050: wake failed: %w", err)
	}
	sleep(10 * time.Millisecond)

	writes := []struct {
		reg, val byte
		what     string
	}{
		{regConfig, dlpf44Hz, "dlpf"},
		{regSmplrtDiv, SampleDivider(opts.RateHz), "sample rate"},
		{regGyroConfig, fsGyro250dps, "gyro config"},
		{regAccelConfig, fsAccel2g, "accel config"},
	}
	for _, w := range writes {
		if err := d.dev.WriteReg(w.reg, w.val); err != nil {
			return fmt.Errorf("mpu6050: %s failed: %w", w.what, err)
		}
	}

	d.scaleAccel = 2.0 / 32768.0
	d.scaleGyro = 250.0 / 32768.0
	return nil
}

// Read fetches accel, temperature and gyro in one burst.
func (d *Device) Read() (Sample, error) {
	if d == nil {
		return Sample{}, fmt.Errorf("mpu6050: device is nil")
	}
	b := d.buf[:]
	if err := d.dev.ReadReg(regAccelXoutH, b); err != nil {
		return Sample{}, fmt.Errorf("mpu6050: read sensors failed: %w", err)
	}
	word := func(i int) float64 { return float64(i2c.BigEndianI16(b[i : i+2])) }

	return Sample{
		Time:  d.now(),
		Ax:    word(0) * d.scaleAccel,
		Ay:    word(2) * d.scaleAccel,
		Az:    word(4) * d.scaleAccel,
		TempC: word(6)/340.0 + 36.53,
		Gx:    word(8) * d.scaleGyro,
		Gy:    word(10) * d.scaleGyro,
		Gz:    word(12) * d.scaleGyro,
	}, nil
}
