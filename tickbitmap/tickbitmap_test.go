package tickbitmap

import "testing"

func TestPosition(t *testing.T) {
	cases := []struct {
		compressed int32
		word       int16
		bit        uint8
	}{
		{0, 0, 0},
		{255, 0, 255},
		{256, 1, 0},
		{-1, -1, 255},
		{-256, -1, 0},
		{-257, -2, 255},
	}

	for _, c := range cases {
		word, bit := Position(c.compressed)
		if word != c.word || bit != c.bit {
			t.Errorf("Position(%d) = (%d, %d), want (%d, %d)", c.compressed, word, bit, c.word, c.bit)
		}
	}
}

func TestFlipTick_TogglesBit(t *testing.T) {
	m := Map{}
	const spacing = int32(60)
	tick := int32(120)

	FlipTick(m, tick, spacing)
	next, initialized := NextInitializedTickWithinOneWord(m, tick, spacing, true)
	if !initialized || next != tick {
		t.Fatalf("expected tick %d initialized after flip, got next=%d initialized=%v", tick, next, initialized)
	}

	FlipTick(m, tick, spacing)
	if _, initialized := NextInitializedTickWithinOneWord(m, tick, spacing, true); initialized {
		t.Fatal("expected tick to be uninitialized after flipping twice")
	}
}

func TestNextInitializedTickWithinOneWord_Lte(t *testing.T) {
	m := Map{}
	const spacing = int32(10)

	for _, tick := range []int32{0, 60, 120} {
		FlipTick(m, tick, spacing)
	}

	next, initialized := NextInitializedTickWithinOneWord(m, 120, spacing, true)
	if !initialized || next != 120 {
		t.Errorf("lte search at 120 = (%d, %v), want (120, true)", next, initialized)
	}

	next, initialized = NextInitializedTickWithinOneWord(m, 119, spacing, true)
	if !initialized || next != 60 {
		t.Errorf("lte search at 119 = (%d, %v), want (60, true)", next, initialized)
	}

	next, initialized = NextInitializedTickWithinOneWord(m, -10, spacing, true)
	if initialized {
		t.Errorf("lte search below all initialized ticks unexpectedly found %d", next)
	}
}

func TestNextInitializedTickWithinOneWord_Gt(t *testing.T) {
	m := Map{}
	const spacing = int32(10)

	for _, tick := range []int32{0, 60, 120} {
		FlipTick(m, tick, spacing)
	}

	next, initialized := NextInitializedTickWithinOneWord(m, 0, spacing, false)
	if !initialized || next != 60 {
		t.Errorf("gt search at 0 = (%d, %v), want (60, true)", next, initialized)
	}

	next, initialized = NextInitializedTickWithinOneWord(m, 60, spacing, false)
	if !initialized || next != 120 {
		t.Errorf("gt search at 60 = (%d, %v), want (120, true)", next, initialized)
	}
}

func TestNextInitializedTickWithinOneWord_NegativeTicks(t *testing.T) {
	m := Map{}
	const spacing = int32(60)

	FlipTick(m, -120, spacing)
	FlipTick(m, -60, spacing)

	next, initialized := NextInitializedTickWithinOneWord(m, -61, spacing, true)
	if !initialized || next != -120 {
		t.Errorf("lte search at -61 = (%d, %v), want (-120, true)", next, initialized)
	}

	next, initialized = NextInitializedTickWithinOneWord(m, -120, spacing, false)
	if !initialized || next != -60 {
		t.Errorf("gt search at -120 = (%d, %v), want (-60, true)", next, initialized)
	}
}
