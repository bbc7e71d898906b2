// Package ds4 encodes DualShock 4 USB input reports and decodes the matching
// output (rumble/led) reports.
package ds4

import "encoding/binary"

// InputState is the logical DS4 state an input report is built from.
//
// Stick axes are signed and centered on zero; the wire format offsets them
// to unsigned 0..255. Motion fields are raw fixed-point counts (see the
// conversion helpers).
type InputState struct {
	LX, LY  int8
	RX, RY  int8
	Buttons uint16
	DPad    uint8
	L2, R2  uint8

	GyroX, GyroY, GyroZ    int16
	AccelX, AccelY, AccelZ int16
}

// Encode builds the 64-byte USB input report for the state. It is pure:
// the same InputState always yields a byte-identical report, the report
// length never varies, and every reserved byte holds its required constant.
//
// The hardware rolls a packet counter in byte 7 and a timestamp in bytes
// 10-11; a translated report stream keeps both pinned to zero so encoding
// stays deterministic.
func Encode(s InputState) []byte {
	b := make([]byte, InputReportSize)

	b[0] = ReportIDInput

	b[1] = uint8(int16(s.LX) + 128)
	b[2] = uint8(int16(s.LY) + 128)
	b[3] = uint8(int16(s.RX) + 128)
	b[4] = uint8(int16(s.RY) + 128)

	b[5] = (encodeDPad(s.DPad) & DPadMask) | (uint8(s.Buttons) & 0xF0)
	b[6] = uint8(s.Buttons >> 8)

	psTouch := uint8(0)
	if s.Buttons&ButtonPS != 0 {
		psTouch |= ButtonPSUSB
	}
	if s.Buttons&ButtonTouchpadClick != 0 {
		psTouch |= ButtonTouchpadClickUSB
	}
	b[7] = psTouch

	b[8] = s.L2
	b[9] = s.R2

	binary.LittleEndian.PutUint16(b[13:15], uint16(s.GyroX))
	binary.LittleEndian.PutUint16(b[15:17], uint16(s.GyroY))
	binary.LittleEndian.PutUint16(b[17:19], uint16(s.GyroZ))

	binary.LittleEndian.PutUint16(b[19:21], uint16(s.AccelX))
	binary.LittleEndian.PutUint16(b[21:23], uint16(s.AccelY))
	binary.LittleEndian.PutUint16(b[23:25], uint16(s.AccelZ))

	b[30] = BatteryFullyCharged

	// No touchpad on the source device; both touch slots stay inactive.
	b[35] = TouchInactiveMask
	b[39] = TouchInactiveMask

	return b
}

func encodeDPad(dpad uint8) uint8 {
	switch {
	case dpad&DPadUp != 0 && dpad&DPadRight != 0:
		return DPadUSBUpRight
	case dpad&DPadUp != 0 && dpad&DPadLeft != 0:
		return DPadUSBUpLeft
	case dpad&DPadDown != 0 && dpad&DPadRight != 0:
		return DPadUSBDownRight
	case dpad&DPadDown != 0 && dpad&DPadLeft != 0:
		return DPadUSBDownLeft
	case dpad&DPadUp != 0:
		return DPadUSBUp
	case dpad&DPadDown != 0:
		return DPadUSBDown
	case dpad&DPadLeft != 0:
		return DPadUSBLeft
	case dpad&DPadRight != 0:
		return DPadUSBRight
	default:
		return DPadUSBNeutral
	}
}
