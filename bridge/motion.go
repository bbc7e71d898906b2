package bridge

// DefaultMotionGraceSamples is how many consecutive suspicious gyro samples
// are tolerated before the motion stream counts as degraded. At the device's
// native report rate this is roughly half a second.
const DefaultMotionGraceSamples = 250

// motionMonitor detects the documented sleep/wake defect: after the device
// sleeps, the motion sensor can come back frozen (bit-identical samples) or
// all-zero, and nothing in user space can reawaken it. The monitor tracks
// consecutive suspicious gyro samples and flips to degraded past the grace
// period; a changing non-zero sample recovers immediately.
//
// A perfectly still device also produces near-constant samples, which is why
// the grace period exists: real sensor noise makes long runs of bit-identical
// readings implausible on a healthy part.
type motionMonitor struct {
	grace int

	last      [3]int16
	primed    bool
	frozenFor int
	zeroFor   int
	degraded  bool
}

// observe feeds one gyro sample and returns the current degraded verdict.
func (m *motionMonitor) observe(gyro [3]int16) bool {
	zero := gyro == [3]int16{}
	if zero {
		m.zeroFor++
	} else {
		m.zeroFor = 0
	}

	if m.primed && gyro == m.last {
		m.frozenFor++
	} else {
		m.frozenFor = 0
	}
	m.last = gyro
	m.primed = true

	if m.zeroFor == 0 && m.frozenFor == 0 {
		m.degraded = false
		return false
	}
	if m.zeroFor > m.grace || m.frozenFor > m.grace {
		m.degraded = true
	}
	return m.degraded
}
