//go:build !tinygo

package hal

import (
	"testing"
	"time"
)

func TestTickPeriod(t *testing.T) {
	cases := []struct {
		reload  uint32
		clockHz uint32
		want    time.Duration
	}{
		{159_999, 16_000_000, 10 * time.Millisecond},
		{15_999, 16_000_000, time.Millisecond},
		{1_599_999, 16_000_000, 100 * time.Millisecond},
		{0, 16_000_000, 62 * time.Nanosecond},
	}
	for _, c := range cases {
		if got := tickPeriod(c.reload, c.clockHz); got != c.want {
			t.Errorf("tickPeriod(%d, %d) = %v, want %v", c.reload, c.clockHz, got, c.want)
		}
	}
}

func TestSysTickConfigure(t *testing.T) {
	st := newHostSysTick(16_000_000)
	if err := st.Configure(0); err == nil {
		t.Error("zero reload accepted")
	}
	if err := st.Start(); err == nil {
		t.Error("start before configure accepted")
	}
	if err := st.Configure(159_999); err != nil {
		t.Fatal(err)
	}
	if err := st.Start(); err != nil {
		t.Fatal(err)
	}
	defer st.Stop()
	if err := st.Configure(15_999); err == nil {
		t.Error("reconfigure while running accepted")
	}
	if err := st.Start(); err == nil {
		t.Error("double start accepted")
	}
}

func TestSysTickDelivers(t *testing.T) {
	st := newHostSysTick(16_000_000)
	// 1600 cycles at 16 MHz is 100us per tick.
	if err := st.Configure(1_599); err != nil {
		t.Fatal(err)
	}
	if err := st.Start(); err != nil {
		t.Fatal(err)
	}
	select {
	case <-st.Ticks():
	case <-time.After(time.Second):
		t.Fatal("no tick within a second")
	}
	st.Stop()
	if err := st.Start(); err == nil {
		t.Error("restart after stop accepted")
	}
	// The channel closes once the timer goroutine winds down.
	for range st.Ticks() {
	}
}
