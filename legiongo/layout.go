// Package legiongo reads and decodes the Lenovo Legion Go controller's
// vendor HID input reports.
//
// The vendor report format is undocumented; every byte offset in here is a
// compatibility contract with one concrete device model, captured as a
// declarative Layout table. Supporting another model means registering
// another table, not writing new parsing code.
package legiongo

import (
	"fmt"
	"sync"
)

// Field locates a little-endian signed 16-bit value inside a raw report.
type Field struct {
	Off int
}

// MotionField locates one motion axis inside a raw report. Sign folds the
// device sensor frame into the target (DualShock 4) sensor frame, so the
// decoder emits motion values that are already axis-remapped.
type MotionField struct {
	Off  int
	Sign int16
}

// ButtonBit maps one bit of the raw report onto a logical Button.
type ButtonBit struct {
	Btn Button
	Off int
	Bit uint8
}

// Layout is the declarative offset/sign table for one device variant.
type Layout struct {
	Name      string
	VendorID  uint16
	ProductID uint16

	ReportID   byte
	ReportSize int

	Buttons []ButtonBit

	LX, LY, RX, RY Field

	// Trigger magnitudes, one unsigned byte each.
	L2, R2 int

	// Motion axes, already expressed in the target sensor frame (see the
	// Sign on each field). The axis crossing mirrors what the device's
	// sensor orientation requires: target gx = -gx, gy = gz, gz = gy,
	// ax = ax, ay = -az, az = -ay.
	GyroX, GyroY, GyroZ    MotionField
	AccelX, AccelY, AccelZ MotionField

	GyroCountsPerDps float64
	AccelCountsPerG  float64
}

var (
	variantMu sync.RWMutex
	variants  = map[string]Layout{}
)

// RegisterVariant adds a device variant table to the registry. Called from
// init; registering a duplicate name panics.
func RegisterVariant(l Layout) {
	variantMu.Lock()
	defer variantMu.Unlock()
	if _, ok := variants[l.Name]; ok {
		panic(fmt.Sprintf("legiongo: variant %q registered twice", l.Name))
	}
	variants[l.Name] = l
}

// Variant looks up a registered variant table by name.
func Variant(name string) (Layout, error) {
	variantMu.RLock()
	defer variantMu.RUnlock()
	l, ok := variants[name]
	if !ok {
		return Layout{}, fmt.Errorf("unsupported device variant %q", name)
	}
	return l, nil
}

// VariantNames returns the names of all registered variants.
func VariantNames() []string {
	variantMu.RLock()
	defer variantMu.RUnlock()
	out := make([]string, 0, len(variants))
	for name := range variants {
		out = append(out, name)
	}
	return out
}

// VariantFor finds the variant table matching a VID/PID pair, if any.
func VariantFor(vid, pid uint16) (Layout, bool) {
	variantMu.RLock()
	defer variantMu.RUnlock()
	for _, l := range variants {
		if l.VendorID == vid && l.ProductID == pid {
			return l, true
		}
	}
	return Layout{}, false
}

func init() {
	RegisterVariant(Layout{
		Name:      "legion-go",
		VendorID:  DefaultVID,
		ProductID: DefaultPID,

		ReportID:   ReportIDInput,
		ReportSize: InputReportSize,

		Buttons: []ButtonBit{
			{BtnA, 1, 0},
			{BtnB, 1, 1},
			{BtnX, 1, 2},
			{BtnY, 1, 3},
			{BtnLB, 1, 4},
			{BtnRB, 1, 5},
			{BtnL3, 1, 6},
			{BtnR3, 1, 7},
			{BtnDPadUp, 2, 0},
			{BtnDPadDown, 2, 1},
			{BtnDPadLeft, 2, 2},
			{BtnDPadRight, 2, 3},
			{BtnMenu, 2, 4},
			{BtnView, 2, 5},
			{BtnLegionL, 2, 6},
			{BtnLegionR, 2, 7},
			{BtnShare, 3, 0},
		},

		LX: Field{4},
		LY: Field{6},
		RX: Field{8},
		RY: Field{10},

		L2: 12,
		R2: 13,

		// Device order in the report is gx, gy, gz at 14/16/18 and
		// ax, ay, az at 20/22/24; the crossing below is the sensor
		// orientation remap.
		GyroX:  MotionField{14, -1},
		GyroY:  MotionField{18, 1},
		GyroZ:  MotionField{16, 1},
		AccelX: MotionField{20, 1},
		AccelY: MotionField{24, -1},
		AccelZ: MotionField{22, -1},

		GyroCountsPerDps: GyroCountsPerDps,
		AccelCountsPerG:  AccelCountsPerG,
	})
}
