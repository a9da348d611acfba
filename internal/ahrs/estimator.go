package ahrs

import (
	"math"
	"time"

	"ipt-nav/internal/geom"
	"ipt-nav/internal/sensors/mpu6050"
)

// maxStep drops integration across gaps longer than this (stalls, bus retries).
const maxStep = 500 * time.Millisecond

// estimator fuses gyro and accel into roll/pitch/yaw. Roll and pitch use a
// complementary filter against gravity; yaw is integrated gyro only, so it
// drifts at whatever rate the bias estimate is off.
//
// Yaw is clockwise-positive in [0, 2π), matching orientation.Sample.
type estimator struct {
	tau float64

	calTarget  int
	calN       int
	calSum     [3]float64
	bias       [3]float64 // deg/s
	calibrated bool

	have             bool
	last             time.Time
	roll, pitch, yaw float64
}

func newEstimator(calSamples int) estimator {
	e := estimator{tau: 0.5, calTarget: calSamples}
	e.calibrated = calSamples <= 0
	return e
}

// recalibrate discards the bias and restarts averaging. The device must be
// still while it runs.
func (e *estimator) recalibrate() {
	e.calN = 0
	e.calSum = [3]float64{}
	e.calibrated = e.calTarget <= 0
	e.have = false
	e.last = time.Time{}
}

// update consumes one reading. It reports false while calibrating.
func (e *estimator) update(s mpu6050.Sample, now time.Time) bool {
	if !e.calibrated {
		e.calSum[0] += s.Gx
		e.calSum[1] += s.Gy
		e.calSum[2] += s.Gz
		e.calN++
		if e.calN >= e.calTarget {
			n := float64(e.calN)
			e.bias = [3]float64{e.calSum[0] / n, e.calSum[1] / n, e.calSum[2] / n}
			e.calibrated = true
		}
		return false
	}

	dt := 0.0
	if !e.last.IsZero() {
		dt = now.Sub(e.last).Seconds()
	}
	e.last = now
	if dt <= 0 || dt > maxStep.Seconds() {
		dt = 0
	}

	accRoll := math.Atan2(s.Ay, s.Az)
	accPitch := math.Atan2(-s.Ax, math.Sqrt(s.Ay*s.Ay+s.Az*s.Az))

	const d2r = math.Pi / 180
	gx := (s.Gx - e.bias[0]) * d2r
	gy := (s.Gy - e.bias[1]) * d2r
	gz := (s.Gz - e.bias[2]) * d2r

	if !e.have {
		e.roll, e.pitch = accRoll, accPitch
		e.have = true
		return true
	}

	if dt > 0 {
		alpha := e.tau / (e.tau + dt)
		e.roll = alpha*(e.roll+gx*dt) + (1-alpha)*accRoll
		e.pitch = alpha*(e.pitch+gy*dt) + (1-alpha)*accPitch
		// Positive gz is counter-clockwise seen from above.
		e.yaw = float64(geom.Angle(e.yaw - gz*dt).Normalize())
	} else {
		e.roll, e.pitch = accRoll, accPitch
	}
	return true
}
