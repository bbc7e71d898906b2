package legiongo

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMalformedReport marks a raw report that does not match the variant's
// declared length or report ID. Malformed reports are dropped samples, never
// partially applied.
var ErrMalformedReport = errors.New("malformed input report")

// Snapshot is the decoded logical state of one raw input report.
//
// Sticks are signed 16-bit raw values (see StickMax for normalization),
// triggers are unsigned 0..255 magnitudes, and motion axes are the device's
// fixed-point counts already remapped into the target sensor frame by the
// layout table.
type Snapshot struct {
	Buttons Button

	LX, LY int16
	RX, RY int16

	L2, R2 uint8

	GyroX, GyroY, GyroZ    int16
	AccelX, AccelY, AccelZ int16
}

// Pressed reports whether all bits of b are set in the snapshot.
func (s Snapshot) Pressed(b Button) bool { return s.Buttons&b == b }

// Decode parses a raw report according to the layout table. It is pure and
// deterministic: the same bytes always produce the same Snapshot.
func Decode(l Layout, raw []byte) (Snapshot, error) {
	if len(raw) != l.ReportSize {
		return Snapshot{}, fmt.Errorf("%w: got %d bytes, want %d", ErrMalformedReport, len(raw), l.ReportSize)
	}
	if raw[0] != l.ReportID {
		return Snapshot{}, fmt.Errorf("%w: report id 0x%02x, want 0x%02x", ErrMalformedReport, raw[0], l.ReportID)
	}

	var s Snapshot
	for _, bb := range l.Buttons {
		if raw[bb.Off]&(1<<bb.Bit) != 0 {
			s.Buttons |= bb.Btn
		}
	}

	s.LX = i16(raw, l.LX.Off)
	s.LY = i16(raw, l.LY.Off)
	s.RX = i16(raw, l.RX.Off)
	s.RY = i16(raw, l.RY.Off)

	s.L2 = raw[l.L2]
	s.R2 = raw[l.R2]

	s.GyroX = motion(raw, l.GyroX)
	s.GyroY = motion(raw, l.GyroY)
	s.GyroZ = motion(raw, l.GyroZ)
	s.AccelX = motion(raw, l.AccelX)
	s.AccelY = motion(raw, l.AccelY)
	s.AccelZ = motion(raw, l.AccelZ)

	return s, nil
}

func i16(raw []byte, off int) int16 {
	return int16(binary.LittleEndian.Uint16(raw[off : off+2]))
}

func motion(raw []byte, f MotionField) int16 {
	v := i16(raw, f.Off)
	if f.Sign < 0 {
		// -(-32768) overflows int16; pin to the positive full scale.
		if v == -32768 {
			return 32767
		}
		return -v
	}
	return v
}
