package ds4

import "fmt"

// OutputState is the decoded feedback carried by a DS4 output report:
// rumble motors, lightbar color, and lightbar flash timing.
type OutputState struct {
	RumbleSmall uint8 // (0-255)
	RumbleLarge uint8 // (0-255)
	LedRed      uint8 // (0-255)
	LedGreen    uint8 // (0-255)
	LedBlue     uint8 // (0-255)
	FlashOn     uint8 // (units of 2.5ms)
	FlashOff    uint8 // (units of 2.5ms)
}

// DecodeOutput parses an output report received back from the virtual bus.
func DecodeOutput(raw []byte) (OutputState, error) {
	if len(raw) < OutputReportSize {
		return OutputState{}, fmt.Errorf("output report too short: %d bytes", len(raw))
	}
	if raw[OutOffsetReportID] != ReportIDOutput {
		return OutputState{}, fmt.Errorf("unexpected output report id 0x%02x", raw[OutOffsetReportID])
	}
	return OutputState{
		RumbleSmall: raw[OutOffsetRumbleSmall],
		RumbleLarge: raw[OutOffsetRumbleLarge],
		LedRed:      raw[OutOffsetLedRed],
		LedGreen:    raw[OutOffsetLedGreen],
		LedBlue:     raw[OutOffsetLedBlue],
		FlashOn:     raw[OutOffsetFlashOn],
		FlashOff:    raw[OutOffsetFlashOff],
	}, nil
}
