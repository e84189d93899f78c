// lunatrace runs the demo threads headless and emits one structured log
// line per context switch, then halts the kernel.
package main

import (
	"errors"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/klabuguen/LunaRTOS/app"
	"github.com/klabuguen/LunaRTOS/hal"
	"github.com/klabuguen/LunaRTOS/kernel"
)

var errTraceDone = errors.New("trace complete")

func main() {
	var switches uint64
	var quanta uint
	flag.Uint64Var(&switches, "switches", 32, "Number of context switches to trace.")
	flag.UintVar(&quanta, "quantum", app.QuantaMs, "Round-robin quantum in milliseconds.")
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stdout)

	b := hal.New()
	k, prof, err := app.New(b)
	if err != nil {
		log.WithError(err).Fatal("bring-up failed")
	}

	var seen uint64
	k.SetSwitchHook(func(e kernel.SwitchEvent) {
		log.WithFields(logrus.Fields{
			"from":  e.From,
			"to":    e.To,
			"cause": e.Cause.String(),
			"tick":  e.Tick,
		}).Info("context switch")
		seen++
		if seen >= switches {
			k.Halt(errTraceDone)
		}
	})

	err = k.Launch(uint32(quanta))
	if err != nil && err != errTraceDone {
		log.WithError(err).Fatal("kernel halted")
	}

	s := prof.Snapshot()
	log.WithFields(logrus.Fields{
		"switches": seen,
		"ticks":    k.Ticks(),
		"t0":       s[0],
		"t1":       s[1],
		"t2":       s[2],
	}).Info("trace complete")
}
