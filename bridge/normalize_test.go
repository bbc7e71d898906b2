package bridge

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Originalimoc/compatctl/ds4"
	"github.com/Originalimoc/compatctl/legiongo"
)

func TestNormalizeEdges(t *testing.T) {
	n := NewNormalizer(testLayout(t), Config{})

	// up, down, down, up: one press edge on the second sample, one release
	// edge on the fourth, nothing anywhere else.
	seq := []legiongo.Snapshot{
		{},
		{Buttons: legiongo.BtnA},
		{Buttons: legiongo.BtnA},
		{},
	}

	var prev *legiongo.Snapshot
	for i, cur := range seq {
		st := n.Normalize(prev, cur)
		switch i {
		case 1:
			assert.Equal(t, legiongo.BtnA, st.JustPressed, "sample %d", i)
			assert.Zero(t, st.JustReleased, "sample %d", i)
		case 3:
			assert.Zero(t, st.JustPressed, "sample %d", i)
			assert.Equal(t, legiongo.BtnA, st.JustReleased, "sample %d", i)
		default:
			assert.Zero(t, st.JustPressed, "sample %d", i)
			assert.Zero(t, st.JustReleased, "sample %d", i)
		}
		c := cur
		prev = &c
	}
}

func TestNormalizeNoEdgesOnFirstSample(t *testing.T) {
	n := NewNormalizer(testLayout(t), Config{})

	st := n.Normalize(nil, legiongo.Snapshot{Buttons: legiongo.BtnA | legiongo.BtnMenu})
	assert.Zero(t, st.JustPressed)
	assert.Zero(t, st.JustReleased)
	assert.Equal(t, legiongo.BtnA|legiongo.BtnMenu, st.Buttons)
}

func TestDeadzoneRadial(t *testing.T) {
	n := NewNormalizer(testLayout(t), Config{StickDeadzone: 0.1})

	t.Run("inside clamps to zero", func(t *testing.T) {
		st := n.Normalize(nil, legiongo.Snapshot{LX: 2000, LY: -2000})
		assert.Zero(t, st.LX)
		assert.Zero(t, st.LY)
	})

	t.Run("continuous at the boundary", func(t *testing.T) {
		f := 0.11 * float64(legiongo.StickMax)
		raw := int16(f)
		st := n.Normalize(nil, legiongo.Snapshot{LX: raw})
		assert.Greater(t, st.LX, 0.0)
		assert.Less(t, st.LX, 0.02)
	})

	t.Run("full deflection stays full", func(t *testing.T) {
		st := n.Normalize(nil, legiongo.Snapshot{RX: 32767})
		assert.InDelta(t, 1.0, st.RX, 1e-9)
	})

	t.Run("direction preserved on diagonals", func(t *testing.T) {
		st := n.Normalize(nil, legiongo.Snapshot{LX: 20000, LY: 20000})
		assert.InDelta(t, st.LX, st.LY, 1e-9)
		assert.Greater(t, st.LX, 0.0)
	})

	t.Run("monotonic in magnitude", func(t *testing.T) {
		prevMag := -1.0
		for _, raw := range []int16{0, 1500, 4000, 8000, 16000, 32767} {
			st := n.Normalize(nil, legiongo.Snapshot{LX: raw})
			mag := math.Abs(st.LX)
			assert.GreaterOrEqual(t, mag, prevMag, "raw=%d", raw)
			prevMag = mag
		}
	})
}

func TestDeadzoneDisabled(t *testing.T) {
	n := NewNormalizer(testLayout(t), Config{})

	st := n.Normalize(nil, legiongo.Snapshot{LX: 328})
	assert.InDelta(t, 0.01, st.LX, 1e-3)
}

func TestShareButtonPolicy(t *testing.T) {
	snap := legiongo.Snapshot{Buttons: legiongo.BtnShare | legiongo.BtnA, L2: 0x40}

	off := NewNormalizer(testLayout(t), Config{}).Normalize(nil, snap)
	on := NewNormalizer(testLayout(t), Config{EnableShareButton: true}).Normalize(nil, snap)

	assert.False(t, off.ShareActive)
	assert.True(t, on.ShareActive)

	// The capture button never reaches the generic button set either way.
	assert.Zero(t, off.Buttons&legiongo.BtnShare)
	assert.Zero(t, on.Buttons&legiongo.BtnShare)

	// The two reports differ in exactly the Share bit.
	offRep := off.DS4()
	onRep := on.DS4()
	assert.Zero(t, offRep.Buttons&ds4.ButtonShare)
	assert.Equal(t, ds4.ButtonShare, onRep.Buttons&ds4.ButtonShare)
	assert.Equal(t, offRep.Buttons, onRep.Buttons&^ds4.ButtonShare)
	onRep.Buttons &^= ds4.ButtonShare
	assert.Equal(t, offRep, onRep)
}

func TestShareButtonNoEdges(t *testing.T) {
	n := NewNormalizer(testLayout(t), Config{EnableShareButton: true})

	prev := legiongo.Snapshot{}
	st := n.Normalize(&prev, legiongo.Snapshot{Buttons: legiongo.BtnShare})
	assert.Zero(t, st.JustPressed)
	assert.True(t, st.ShareActive)
}

func TestMotionFreezeDetection(t *testing.T) {
	n := NewNormalizer(testLayout(t), Config{MotionGraceSamples: 3})

	frozen := legiongo.Snapshot{GyroX: 17, GyroY: -4, GyroZ: 2, AccelZ: -4096}

	// Grace period: the identical sample repeats without tripping the
	// monitor until the run exceeds the tolerance.
	for i := 0; i < 4; i++ {
		st := n.Normalize(nil, frozen)
		assert.False(t, st.MotionDegraded, "sample %d", i)
	}

	st := n.Normalize(nil, frozen)
	assert.True(t, st.MotionDegraded)
	assert.Equal(t, [3]float64{}, st.GyroDps)
	assert.Equal(t, [3]float64{0, 0, -1}, st.AccelG)

	// Neutral rest pose encodes to the flat-on-a-table accel vector.
	rep := st.DS4()
	assert.Equal(t, int16(0), rep.GyroX)
	assert.Equal(t, int16(0), rep.GyroY)
	assert.Equal(t, int16(0), rep.GyroZ)
	assert.Equal(t, ds4.DefaultAccelXRaw, rep.AccelX)
	assert.Equal(t, ds4.DefaultAccelYRaw, rep.AccelY)
	assert.Equal(t, ds4.DefaultAccelZRaw, rep.AccelZ)

	// A changing sample recovers immediately.
	st = n.Normalize(nil, legiongo.Snapshot{GyroX: 18, GyroY: -4, GyroZ: 2, AccelZ: -4096})
	assert.False(t, st.MotionDegraded)
	assert.InDelta(t, 18.0/legiongo.GyroCountsPerDps, st.GyroDps[0], 1e-9)
}

func TestMotionAllZeroDetection(t *testing.T) {
	n := NewNormalizer(testLayout(t), Config{MotionGraceSamples: 3})

	for i := 0; i < 3; i++ {
		st := n.Normalize(nil, legiongo.Snapshot{})
		assert.False(t, st.MotionDegraded, "sample %d", i)
	}
	st := n.Normalize(nil, legiongo.Snapshot{})
	assert.True(t, st.MotionDegraded)
	assert.True(t, n.MotionDegraded())
}

func TestMotionResetAfterReconnect(t *testing.T) {
	n := NewNormalizer(testLayout(t), Config{MotionGraceSamples: 2})

	for i := 0; i < 5; i++ {
		n.Normalize(nil, legiongo.Snapshot{})
	}
	assert.True(t, n.MotionDegraded())

	n.Reset()
	assert.False(t, n.MotionDegraded())
	st := n.Normalize(nil, legiongo.Snapshot{})
	assert.False(t, st.MotionDegraded)
}

func TestMotionUnits(t *testing.T) {
	n := NewNormalizer(testLayout(t), Config{})

	st := n.Normalize(nil, legiongo.Snapshot{
		GyroX: 160, GyroY: -32, GyroZ: 16,
		AccelX: 4096, AccelY: -2048, AccelZ: 8192,
	})
	assert.InDelta(t, 10.0, st.GyroDps[0], 1e-9)
	assert.InDelta(t, -2.0, st.GyroDps[1], 1e-9)
	assert.InDelta(t, 1.0, st.GyroDps[2], 1e-9)
	assert.InDelta(t, 1.0, st.AccelG[0], 1e-9)
	assert.InDelta(t, -0.5, st.AccelG[1], 1e-9)
	assert.InDelta(t, 2.0, st.AccelG[2], 1e-9)
}

func TestMotionScalePerVariant(t *testing.T) {
	// A variant with a different sensor part declares its own scale factors
	// in the layout table; the same raw counts mean different physical units.
	l := testLayout(t)
	l.GyroCountsPerDps = 32
	l.AccelCountsPerG = 8192

	n := NewNormalizer(l, Config{})
	st := n.Normalize(nil, legiongo.Snapshot{GyroX: 320, AccelZ: 8192})
	assert.InDelta(t, 10.0, st.GyroDps[0], 1e-9)
	assert.InDelta(t, 1.0, st.AccelG[2], 1e-9)

	def := NewNormalizer(testLayout(t), Config{})
	st = def.Normalize(nil, legiongo.Snapshot{GyroX: 320, AccelZ: 8192})
	assert.InDelta(t, 20.0, st.GyroDps[0], 1e-9)
	assert.InDelta(t, 2.0, st.AccelG[2], 1e-9)
}

func TestNormalizerScaleFallback(t *testing.T) {
	// A table registered without scale factors falls back to the package
	// defaults instead of dividing by zero.
	n := NewNormalizer(legiongo.Layout{}, Config{})
	st := n.Normalize(nil, legiongo.Snapshot{GyroX: 16, AccelZ: 4096})
	assert.InDelta(t, 1.0, st.GyroDps[0], 1e-9)
	assert.InDelta(t, 1.0, st.AccelG[2], 1e-9)
}

func TestDS4ButtonMapping(t *testing.T) {
	cases := []struct {
		name string
		src  legiongo.Button
		want uint16
	}{
		{"a to cross", legiongo.BtnA, ds4.ButtonCross},
		{"b to circle", legiongo.BtnB, ds4.ButtonCircle},
		{"x to square", legiongo.BtnX, ds4.ButtonSquare},
		{"y to triangle", legiongo.BtnY, ds4.ButtonTriangle},
		{"bumpers", legiongo.BtnLB | legiongo.BtnRB, ds4.ButtonL1 | ds4.ButtonR1},
		{"stick clicks", legiongo.BtnL3 | legiongo.BtnR3, ds4.ButtonL3 | ds4.ButtonR3},
		{"menu to options", legiongo.BtnMenu, ds4.ButtonOptions},
		{"view to touchpad click", legiongo.BtnView, ds4.ButtonTouchpadClick},
		{"left legion to ps", legiongo.BtnLegionL, ds4.ButtonPS},
		{"right legion consumed", legiongo.BtnLegionR, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := State{Buttons: tc.src}
			assert.Equal(t, tc.want, st.DS4().Buttons)
		})
	}
}

func TestDS4DPadMapping(t *testing.T) {
	st := State{Buttons: legiongo.BtnDPadUp | legiongo.BtnDPadRight}
	assert.Equal(t, uint8(ds4.DPadUp|ds4.DPadRight), st.DS4().DPad)
}

func TestDS4TriggerDigitalBits(t *testing.T) {
	st := State{L2: TriggerDigitalThreshold}
	assert.Zero(t, st.DS4().Buttons&ds4.ButtonL2, "at the threshold the digital bit stays clear")

	st = State{L2: TriggerDigitalThreshold + 1, R2: 0xFF}
	rep := st.DS4()
	assert.Equal(t, ds4.ButtonL2|ds4.ButtonR2, rep.Buttons&(ds4.ButtonL2|ds4.ButtonR2))
	assert.Equal(t, uint8(TriggerDigitalThreshold+1), rep.L2)
	assert.Equal(t, uint8(0xFF), rep.R2)
}

func TestDS4StickScaling(t *testing.T) {
	st := State{LX: 1, LY: -1, RX: 0.5}
	rep := st.DS4()
	assert.Equal(t, int8(127), rep.LX)
	assert.Equal(t, int8(-127), rep.LY)
	assert.Equal(t, int8(64), rep.RX)
	assert.Equal(t, int8(0), rep.RY)
}
