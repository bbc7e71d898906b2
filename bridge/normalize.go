// Package bridge runs the read-decode-normalize-encode-submit cycle that
// turns Legion Go input reports into virtual DualShock 4 reports.
package bridge

import (
	"math"

	"github.com/Originalimoc/compatctl/legiongo"
)

// Config fixes the normalization policy at startup.
type Config struct {
	// EnableShareButton merges the capture button into the DS4 Share slot.
	// When false the button is consumed and affects nothing.
	EnableShareButton bool

	// StickDeadzone is the radial deadzone as a fraction of full stick
	// deflection, applied to the magnitude of the stick vector rather than
	// per axis so diagonal input has no axial bias.
	StickDeadzone float64

	// MotionGraceSamples is how many consecutive frozen or all-zero gyro
	// samples to tolerate before the motion stream counts as degraded.
	MotionGraceSamples int
}

// State is the normalized per-iteration pipeline state: deadzone-corrected
// analog values, press/release edges against the previous snapshot, and the
// effective share-button decision.
type State struct {
	Buttons      legiongo.Button
	JustPressed  legiongo.Button
	JustReleased legiongo.Button

	// Stick axes in [-1.0, 1.0] after deadzone correction.
	LX, LY float64
	RX, RY float64

	L2, R2 uint8

	// Motion in physical units, target sensor frame.
	GyroDps [3]float64
	AccelG  [3]float64

	// MotionDegraded marks the documented sleep/wake sensor defect: the
	// gyro stopped producing data and neutral rest values were substituted.
	MotionDegraded bool

	// ShareActive is the capture button state after the mapping policy.
	ShareActive bool
}

// Normalizer derives State from consecutive snapshots. It carries the
// variant's sensor scale factors and the motion health tracker across
// iterations; everything else is computed fresh from (prev, cur) each cycle.
type Normalizer struct {
	cfg        Config
	gyroScale  float64
	accelScale float64
	motion     motionMonitor
}

// NewNormalizer builds a normalizer for one device variant. The layout's
// sensor scales convert raw motion counts to physical units, so a variant
// with a different sensor part only needs a different table.
func NewNormalizer(layout legiongo.Layout, cfg Config) *Normalizer {
	if cfg.MotionGraceSamples <= 0 {
		cfg.MotionGraceSamples = DefaultMotionGraceSamples
	}
	gyroScale := layout.GyroCountsPerDps
	if gyroScale <= 0 {
		gyroScale = legiongo.GyroCountsPerDps
	}
	accelScale := layout.AccelCountsPerG
	if accelScale <= 0 {
		accelScale = legiongo.AccelCountsPerG
	}
	return &Normalizer{
		cfg:        cfg,
		gyroScale:  gyroScale,
		accelScale: accelScale,
		motion:     motionMonitor{grace: cfg.MotionGraceSamples},
	}
}

// Normalize computes the normalized state for cur. prev is nil on the first
// iteration after (re)connecting, in which case no edges are reported.
func (n *Normalizer) Normalize(prev *legiongo.Snapshot, cur legiongo.Snapshot) State {
	var st State

	// The capture button never leaks into the generic button set; it only
	// surfaces through ShareActive, and only when enabled.
	st.Buttons = cur.Buttons &^ legiongo.BtnShare
	if n.cfg.EnableShareButton {
		st.ShareActive = cur.Pressed(legiongo.BtnShare)
	}

	if prev != nil {
		prevButtons := prev.Buttons &^ legiongo.BtnShare
		st.JustPressed = st.Buttons &^ prevButtons
		st.JustReleased = prevButtons &^ st.Buttons
	}

	st.LX, st.LY = n.deadzone(cur.LX, cur.LY)
	st.RX, st.RY = n.deadzone(cur.RX, cur.RY)

	st.L2 = cur.L2
	st.R2 = cur.R2

	st.MotionDegraded = n.motion.observe([3]int16{cur.GyroX, cur.GyroY, cur.GyroZ})
	if st.MotionDegraded {
		// Sensor asleep: hold a neutral rest pose instead of fabricating
		// motion from stale counts.
		st.GyroDps = [3]float64{}
		st.AccelG = [3]float64{0, 0, -1}
	} else {
		st.GyroDps = [3]float64{
			float64(cur.GyroX) / n.gyroScale,
			float64(cur.GyroY) / n.gyroScale,
			float64(cur.GyroZ) / n.gyroScale,
		}
		st.AccelG = [3]float64{
			float64(cur.AccelX) / n.accelScale,
			float64(cur.AccelY) / n.accelScale,
			float64(cur.AccelZ) / n.accelScale,
		}
	}

	return st
}

// Reset clears history after a device reconnect so edges and motion health
// start fresh against the new handle.
func (n *Normalizer) Reset() {
	n.motion = motionMonitor{grace: n.cfg.MotionGraceSamples}
	if n.cfg.MotionGraceSamples <= 0 {
		n.motion.grace = DefaultMotionGraceSamples
	}
}

// MotionDegraded reports the current motion health verdict.
func (n *Normalizer) MotionDegraded() bool { return n.motion.degraded }

// deadzone applies the radial deadzone to one stick. Magnitudes at or below
// the threshold clamp to exact zero; above it the remainder rescales onto the
// full range so output is continuous at the boundary:
//
//	out = in/|in| * (|in| - dz) / (1 - dz)
func (n *Normalizer) deadzone(rawX, rawY int16) (x, y float64) {
	x = normStick(rawX)
	y = normStick(rawY)
	dz := n.cfg.StickDeadzone
	if dz <= 0 {
		return x, y
	}

	mag := math.Hypot(x, y)
	if mag <= dz {
		return 0, 0
	}

	scale := (mag - dz) / (1 - dz) / mag
	x *= scale
	y *= scale
	return clamp1(x), clamp1(y)
}

// normStick maps a signed 16-bit raw axis onto [-1.0, 1.0].
func normStick(v int16) float64 {
	return clamp1(float64(v) / legiongo.StickMax)
}

func clamp1(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
