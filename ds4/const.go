package ds4

const (
	ReportIDInput  = 0x01
	ReportIDOutput = 0x05
)

const (
	InputReportSize  = 64
	OutputReportSize = 11
)

const (
	ButtonSquare   uint16 = 0x0010
	ButtonCross    uint16 = 0x0020
	ButtonCircle   uint16 = 0x0040
	ButtonTriangle uint16 = 0x0080

	DPadMask uint8 = 0x0F
)

const (
	ButtonL1      uint16 = 0x0100
	ButtonR1      uint16 = 0x0200
	ButtonL2      uint16 = 0x0400
	ButtonR2      uint16 = 0x0800
	ButtonShare   uint16 = 0x1000
	ButtonOptions uint16 = 0x2000
	ButtonL3      uint16 = 0x4000
	ButtonR3      uint16 = 0x8000

	ButtonPS            uint16 = 0x0001
	ButtonTouchpadClick uint16 = 0x0002
)

const (
	ButtonPSUSB            uint8 = 0x01
	ButtonTouchpadClickUSB uint8 = 0x02
)

// USB hat-switch encoding for the d-pad nibble of byte 5.
const (
	DPadUSBUp        = 0x00
	DPadUSBUpRight   = 0x01
	DPadUSBRight     = 0x02
	DPadUSBDownRight = 0x03
	DPadUSBDown      = 0x04
	DPadUSBDownLeft  = 0x05
	DPadUSBLeft      = 0x06
	DPadUSBUpLeft    = 0x07
	DPadUSBNeutral   = 0x08
)

// Directional d-pad bits as carried in InputState.DPad; combined into the
// hat-switch nibble by the encoder.
const (
	DPadUp    = 0x01
	DPadDown  = 0x02
	DPadLeft  = 0x04
	DPadRight = 0x08
)

// Motion conversion constants. Physical units (°/s, g) clamp to the input
// maximum and then scale linearly onto the signed 16-bit report fields:
//
//	raw = round(clamp(v, -max, max) / max * scale)
//
// ±500 °/s spans ±20000 counts; ±4.2 g spans ±31900 counts.
const (
	GyroInputMaxDps = 500.0
	GyroRawScale    = 20000.0

	AccelInputMaxG = 4.2
	AccelRawScale  = 31900.0
)

// Default accelerometer raw values for a controller lying flat on a table.
const (
	DefaultAccelXRaw int16 = 0
	DefaultAccelYRaw int16 = 0
	// round(-1 g / AccelInputMaxG * AccelRawScale) = -7595
	DefaultAccelZRaw int16 = -7595
)

const (
	BatteryFullyCharged = 0x0B

	TouchInactiveMask uint8 = 0x80
)

// Output (feedback) report byte offsets.
const (
	OutOffsetReportID    = 0
	OutOffsetRumbleSmall = 4
	OutOffsetRumbleLarge = 5
	OutOffsetLedRed      = 6
	OutOffsetLedGreen    = 7
	OutOffsetLedBlue     = 8
	OutOffsetFlashOn     = 9  // Flash on time (units of 2.5ms)
	OutOffsetFlashOff    = 10 // Flash off time (units of 2.5ms)
)
