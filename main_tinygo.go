//go:build tinygo && baremetal

package main

import (
	"github.com/klabuguen/LunaRTOS/app"
	"github.com/klabuguen/LunaRTOS/hal"
)

func main() {
	b := hal.New()
	k, _, err := app.New(b)
	if err != nil {
		b.Logger().WriteLineString("boot: " + err.Error())
		return
	}
	if err := k.Launch(app.QuantaMs); err != nil {
		b.Logger().WriteLineString("halt: " + err.Error())
	}
}
