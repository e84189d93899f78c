//go:build !tinygo

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/klabuguen/LunaRTOS/app"
	"github.com/klabuguen/LunaRTOS/hal"
	"github.com/klabuguen/LunaRTOS/monitor"
)

func main() {
	var headless bool
	var quanta uint
	flag.BoolVar(&headless, "headless", false, "Run without a window.")
	flag.UintVar(&quanta, "quantum", app.QuantaMs, "Round-robin quantum in milliseconds.")
	flag.Parse()

	b := hal.New()
	k, prof, err := app.New(b)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		go func() {
			t := time.NewTicker(time.Second)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					k.Halt(context.Canceled)
					return
				case <-t.C:
					s := prof.Snapshot()
					b.Logger().WriteLineString(fmt.Sprintf(
						"run=%d ticks=%d t0=%d t1=%d t2=%d",
						k.Running(), k.Ticks(), s[0], s[1], s[2]))
				}
			}
		}()
		if err := k.Launch(uint32(quanta)); err != nil && err != context.Canceled {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	m, err := monitor.New(k, b.Display(), prof.Snapshot)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	go m.Run(200 * time.Millisecond)
	go func() {
		if err := k.Launch(uint32(quanta)); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}()

	if err := hal.RunWindow(b, "LunaRTOS"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
