package cortexm

import "testing"

func testRegs() *RegisterFile {
	f := &RegisterFile{}
	for _, r := range GeneralRegs {
		f.Set(r, 0x1000+uint32(r))
	}
	f.Set(PC, 0x0800_0040)
	f.SetPSR(EPSRThumb)
	return f
}

func TestFrameLayout(t *testing.T) {
	const capWords = 100
	s := NewStack(capWords)
	f := testRegs()

	if err := PushHardwareFrame(s, f); err != nil {
		t.Fatalf("push hardware frame: %v", err)
	}
	if err := PushSoftwareFrame(s, f); err != nil {
		t.Fatalf("push software frame: %v", err)
	}

	if got, want := s.SP(), uint32(capWords-FrameWords); got != want {
		t.Fatalf("sp = %d, want %d", got, want)
	}
	if got := s.At(capWords - 1); got != EPSRThumb {
		t.Fatalf("xPSR slot = %#x, want %#x", got, EPSRThumb)
	}
	if got := s.At(capWords - 2); got != f.PC() {
		t.Fatalf("PC slot = %#x, want %#x", got, f.PC())
	}
	if got := s.At(capWords - 3); got != f.Get(LR) {
		t.Fatalf("LR slot = %#x, want %#x", got, f.Get(LR))
	}
	if got := s.At(capWords - 4); got != f.Get(R12) {
		t.Fatalf("R12 slot = %#x, want %#x", got, f.Get(R12))
	}
	// R3..R0 descend from cap-5; R11..R4 descend from cap-9.
	for i := 0; i < 4; i++ {
		if got, want := s.At(uint32(capWords-5-i)), f.Get(Reg(3-i)); got != want {
			t.Fatalf("R%d slot = %#x, want %#x", 3-i, got, want)
		}
	}
	for i := 0; i < 8; i++ {
		if got, want := s.At(uint32(capWords-9-i)), f.Get(R11-Reg(i)); got != want {
			t.Fatalf("%s slot = %#x, want %#x", R11-Reg(i), got, want)
		}
	}
}

func TestFrameRoundTrip(t *testing.T) {
	s := NewStack(100)
	f := testRegs()

	if err := PushHardwareFrame(s, f); err != nil {
		t.Fatal(err)
	}
	if err := PushSoftwareFrame(s, f); err != nil {
		t.Fatal(err)
	}

	var g RegisterFile
	if err := PopSoftwareFrame(s, &g); err != nil {
		t.Fatal(err)
	}
	if err := PopHardwareFrame(s, &g); err != nil {
		t.Fatal(err)
	}

	for _, r := range GeneralRegs {
		if g.Get(r) != f.Get(r) {
			t.Fatalf("%s = %#x, want %#x", r, g.Get(r), f.Get(r))
		}
	}
	if g.PC() != f.PC() {
		t.Fatalf("PC = %#x, want %#x", g.PC(), f.PC())
	}
	if g.PSR() != f.PSR() {
		t.Fatalf("PSR = %#x, want %#x", g.PSR(), f.PSR())
	}
	if got, want := s.SP(), uint32(100); got != want {
		t.Fatalf("sp after pops = %d, want %d", got, want)
	}
}

func TestFrameOverflow(t *testing.T) {
	s := NewStack(16)
	f := testRegs()

	if err := PushHardwareFrame(s, f); err != nil {
		t.Fatalf("first frame should fit: %v", err)
	}
	if err := PushSoftwareFrame(s, f); err != ErrStackOverflow {
		t.Fatalf("err = %v, want ErrStackOverflow", err)
	}
}

func TestFrameUnderflow(t *testing.T) {
	s := NewStack(32)
	var f RegisterFile
	if err := PopSoftwareFrame(s, &f); err != ErrStackUnderflow {
		t.Fatalf("err = %v, want ErrStackUnderflow", err)
	}
}

func TestCanary(t *testing.T) {
	s := NewStack(32)
	if !s.CheckCanary() {
		t.Fatal("fresh stack should have an intact canary")
	}
	s.SetAt(0, 0)
	if s.CheckCanary() {
		t.Fatal("overwritten canary not detected")
	}
}

func TestRegString(t *testing.T) {
	cases := map[Reg]string{R0: "R0", R4: "R4", R11: "R11", R12: "R12", LR: "LR", PC: "PC"}
	for r, want := range cases {
		if got := r.String(); got != want {
			t.Fatalf("String(%d) = %q, want %q", r, got, want)
		}
	}
}
