package bridge

import (
	"math"

	"github.com/Originalimoc/compatctl/ds4"
	"github.com/Originalimoc/compatctl/legiongo"
)

// TriggerDigitalThreshold is the analog trigger magnitude above which the
// DS4 digital L2/R2 bits are reported alongside the analog value.
const TriggerDigitalThreshold = 0x10

// buttonMap carries the fixed source→DS4 button assignment. The capture
// button is deliberately absent: it reaches the Share slot only through the
// normalizer's ShareActive decision. The right Legion button has no target
// slot and is consumed.
var buttonMap = []struct {
	src legiongo.Button
	dst uint16
}{
	{legiongo.BtnA, ds4.ButtonCross},
	{legiongo.BtnB, ds4.ButtonCircle},
	{legiongo.BtnX, ds4.ButtonSquare},
	{legiongo.BtnY, ds4.ButtonTriangle},
	{legiongo.BtnLB, ds4.ButtonL1},
	{legiongo.BtnRB, ds4.ButtonR1},
	{legiongo.BtnL3, ds4.ButtonL3},
	{legiongo.BtnR3, ds4.ButtonR3},
	{legiongo.BtnMenu, ds4.ButtonOptions},
	{legiongo.BtnView, ds4.ButtonTouchpadClick},
	{legiongo.BtnLegionL, ds4.ButtonPS},
}

var dpadMap = []struct {
	src legiongo.Button
	dst uint8
}{
	{legiongo.BtnDPadUp, ds4.DPadUp},
	{legiongo.BtnDPadDown, ds4.DPadDown},
	{legiongo.BtnDPadLeft, ds4.DPadLeft},
	{legiongo.BtnDPadRight, ds4.DPadRight},
}

// DS4 maps the normalized state onto the DualShock 4 logical input state
// the encoder serializes.
func (st State) DS4() ds4.InputState {
	var out ds4.InputState

	for _, m := range buttonMap {
		if st.Buttons&m.src != 0 {
			out.Buttons |= m.dst
		}
	}
	for _, m := range dpadMap {
		if st.Buttons&m.src != 0 {
			out.DPad |= m.dst
		}
	}
	if st.ShareActive {
		out.Buttons |= ds4.ButtonShare
	}

	out.L2 = st.L2
	out.R2 = st.R2
	if st.L2 > TriggerDigitalThreshold {
		out.Buttons |= ds4.ButtonL2
	}
	if st.R2 > TriggerDigitalThreshold {
		out.Buttons |= ds4.ButtonR2
	}

	out.LX = stickToI8(st.LX)
	out.LY = stickToI8(st.LY)
	out.RX = stickToI8(st.RX)
	out.RY = stickToI8(st.RY)

	if st.MotionDegraded {
		// Gyro at rest, gravity only.
		out.AccelX, out.AccelY, out.AccelZ = ds4.RestingAccelRaw()
	} else {
		out.GyroX = ds4.GyroDpsToRaw(st.GyroDps[0])
		out.GyroY = ds4.GyroDpsToRaw(st.GyroDps[1])
		out.GyroZ = ds4.GyroDpsToRaw(st.GyroDps[2])
		out.AccelX = ds4.AccelGToRaw(st.AccelG[0])
		out.AccelY = ds4.AccelGToRaw(st.AccelG[1])
		out.AccelZ = ds4.AccelGToRaw(st.AccelG[2])
	}

	return out
}

func stickToI8(v float64) int8 {
	scaled := math.Round(v * 127)
	if scaled > 127 {
		return 127
	}
	if scaled < -127 {
		return -127
	}
	return int8(scaled)
}
