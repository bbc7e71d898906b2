package legiongo

const (
	// Lenovo Legion Go controllers enumerate under the Lenovo vendor ID.
	DefaultVID = 0x17EF
	DefaultPID = 0x6182
)

const (
	// ReportIDInput is the leading byte of the vendor gamepad input report.
	ReportIDInput = 0x04

	// InputReportSize is the fixed length of the vendor input report. Anything
	// shorter or longer is a malformed sample and gets dropped.
	InputReportSize = 64
)

// Button identifies one digital control in a Snapshot. Values are a bitmask
// so a full button state fits in one word and edge sets can be diffed with
// plain bit operations.
type Button uint32

const (
	BtnA Button = 1 << iota
	BtnB
	BtnX
	BtnY
	BtnLB
	BtnRB
	BtnL3
	BtnR3
	BtnDPadUp
	BtnDPadDown
	BtnDPadLeft
	BtnDPadRight
	BtnMenu
	BtnView
	BtnLegionL
	BtnLegionR

	// BtnShare is the dedicated capture button below the d-pad. It has no
	// direct DualShock 4 equivalent and is only forwarded when the share
	// button mapping is enabled.
	BtnShare
)

// Sensor scale factors for the vendor report's fixed-point motion fields.
//
// Gyro fields are signed 16-bit at 16 counts per °/s (±2048 °/s full scale).
// Accelerometer fields are signed 16-bit at 4096 counts per g (±8 g).
const (
	GyroCountsPerDps = 16.0
	AccelCountsPerG  = 4096.0
)

// StickMax is the positive full-scale deflection of the signed 16-bit stick
// axes. Raw stick values normalize to [-1.0, 1.0] by dividing by StickMax
// (the asymmetric -32768 clamps to -1.0).
const StickMax = 32767.0
