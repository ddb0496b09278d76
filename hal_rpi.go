//go:build linux && (arm || arm64) && !disablegpio
// +build linux
// +build arm arm64
// +build !disablegpio

// This file provides a Raspberry Pi implementation of the HAL functions using
// the periph.io library, on both 32 and 64 bit Raspberry Pi OS.  When
// cross‑compiling on other platforms or when the build tag "disablegpio" is
// specified, hal.go will be used instead.

package main

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// initGPIO initialises periph host state.  It must succeed before any pin
// is looked up.
func initGPIO() error {
	_, err := host.Init()
	return err
}

// lookupPin finds a pin by its BCM number.
func lookupPin(role string, num int) (gpio.PinIO, error) {
	p := gpioreg.ByName(fmt.Sprintf("GPIO%d", num))
	if p == nil {
		return nil, fmt.Errorf("no GPIO %s pin numbered %d", role, num)
	}
	return p, nil
}

// openPins returns the trigger, echo and buzzer pins named in cfg.
func openPins(cfg Config) (trigger gpio.PinOut, echo gpio.PinIn, buzzer gpio.PinOut, err error) {
	if trigger, err = lookupPin("trigger", cfg.TriggerPin); err != nil {
		return nil, nil, nil, err
	}
	if echo, err = lookupPin("echo", cfg.EchoPin); err != nil {
		return nil, nil, nil, err
	}
	if buzzer, err = lookupPin("buzzer", cfg.BuzzerPin); err != nil {
		return nil, nil, nil, err
	}
	return trigger, echo, buzzer, nil
}
