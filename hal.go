//go:build !linux || !(arm || arm64) || disablegpio
// +build !linux !arm,!arm64 disablegpio

package main

// This file provides simulated GPIO so the alarm can be run and tested on a
// desktop machine without Raspberry Pi hardware.  The echo pin answers every
// trigger with a pulse whose width sweeps between a near and a far target,
// so the buzzer cycles on and off.  hal_rpi.go replaces it on the Pi.

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

const (
	simNearEcho  = 300 * time.Microsecond  // ≈5 cm
	simFarEcho   = 1200 * time.Microsecond // ≈20 cm
	simEchoStep  = 50 * time.Microsecond
	simEchoDelay = 50 * time.Microsecond // trigger to rising edge
)

// simEcho is an echo input that produces one pulse per re-arm.
type simEcho struct {
	*gpiotest.Pin

	mu    sync.Mutex
	level gpio.Level
	phase int // 0 waiting to rise, 1 high, 2 done
	width time.Duration
	step  time.Duration
}

func newSimEcho(name string, num int) *simEcho {
	return &simEcho{
		Pin:   &gpiotest.Pin{N: name, Num: num},
		width: simFarEcho,
		step:  -simEchoStep,
	}
}

// In starts a new measurement cycle and moves the simulated target.
func (p *simEcho) In(pull gpio.Pull, edge gpio.Edge) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = gpio.Low
	p.phase = 0
	p.width += p.step
	if p.width <= simNearEcho || p.width >= simFarEcho {
		p.step = -p.step
	}
	return nil
}

func (p *simEcho) Read() gpio.Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

func (p *simEcho) WaitForEdge(timeout time.Duration) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	var wait time.Duration
	switch p.phase {
	case 0:
		wait = simEchoDelay
	case 1:
		wait = p.width
	default:
		time.Sleep(timeout)
		return false
	}
	if wait > timeout {
		time.Sleep(timeout)
		return false
	}
	time.Sleep(wait)
	p.level = !p.level
	p.phase++
	return true
}

// initGPIO performs any global initialisation required to access GPIO pins.
// The simulation needs none.
func initGPIO() error {
	return nil
}

// openPins returns the trigger, echo and buzzer pins named in cfg.
func openPins(cfg Config) (trigger gpio.PinOut, echo gpio.PinIn, buzzer gpio.PinOut, err error) {
	trigger = &gpiotest.Pin{N: fmt.Sprintf("GPIO%d", cfg.TriggerPin), Num: cfg.TriggerPin}
	echo = newSimEcho(fmt.Sprintf("GPIO%d", cfg.EchoPin), cfg.EchoPin)
	buzzer = &gpiotest.Pin{N: fmt.Sprintf("GPIO%d", cfg.BuzzerPin), Num: cfg.BuzzerPin}
	return trigger, echo, buzzer, nil
}
