package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// speedOfSoundCMPerUS is the speed of sound in air (≈343 m/s) in centimetres
// per microsecond.
const speedOfSoundCMPerUS = 0.0343

const (
	triggerSettle = 2 * time.Microsecond  // low before the ping, for a clean rising edge
	triggerWidth  = 10 * time.Microsecond // high time that makes the module emit a burst
)

// maxEdgeWait caps a single WaitForEdge call so a cancelled context is noticed
// while the echo line is quiet.
const maxEdgeWait = 100 * time.Millisecond

var (
	// ErrNoEcho means the echo line never went high before the timeout.
	ErrNoEcho = errors.New("no echo pulse")
	// ErrEchoTimeout means the echo line went high but did not fall in time.
	ErrEchoTimeout = errors.New("echo pulse exceeded timeout")
)

// distanceCM converts a round-trip echo width in microseconds to the one-way
// distance in centimetres.
func distanceCM(micros int64) float64 {
	return float64(micros) * speedOfSoundCMPerUS / 2
}

// Sensor drives an HC-SR04 style ultrasonic ranging module.
type Sensor struct {
	Trigger gpio.PinOut
	Echo    gpio.PinIn
	Timeout time.Duration // bound on one PulseIn call

	now   func() time.Time
	sleep func(time.Duration)
}

// NewSensor returns a Sensor on the given pins.  A non-positive timeout
// falls back to one second.
func NewSensor(trigger gpio.PinOut, echo gpio.PinIn, timeout time.Duration) *Sensor {
	if timeout <= 0 {
		timeout = time.Second
	}
	return &Sensor{
		Trigger: trigger,
		Echo:    echo,
		Timeout: timeout,
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// Setup configures the trigger as an output held low and the echo as an
// input with edge detection.
func (s *Sensor) Setup() error {
	if err := s.Trigger.Out(gpio.Low); err != nil {
		return fmt.Errorf("trigger %s: %w", s.Trigger, err)
	}
	if err := s.Echo.In(gpio.PullDown, gpio.BothEdges); err != nil {
		return fmt.Errorf("echo %s: %w", s.Echo, err)
	}
	return nil
}

// Pulse emits the trigger sequence: low, 2µs, high, 10µs, low.  The sequence
// does not depend on what the echo line is doing.
func (s *Sensor) Pulse() error {
	if err := s.Trigger.Out(gpio.Low); err != nil {
		return err
	}
	s.sleep(triggerSettle)
	if err := s.Trigger.Out(gpio.High); err != nil {
		return err
	}
	s.sleep(triggerWidth)
	return s.Trigger.Out(gpio.Low)
}

// PulseIn measures how long the echo line stays high.  A pulse already in
// progress is skipped.  All waiting shares one deadline of s.Timeout.
// Edges are timestamped when the wait returns, so wake-up latency on real
// hardware skews the measured width and with it the distance.
func (s *Sensor) PulseIn(ctx context.Context) (time.Duration, error) {
	deadline := s.now().Add(s.Timeout)
	if s.Echo.Read() == gpio.High {
		if !s.waitLevel(ctx, gpio.Low, deadline) {
			return 0, s.waitErr(ctx, ErrNoEcho)
		}
	}
	if !s.waitLevel(ctx, gpio.High, deadline) {
		return 0, s.waitErr(ctx, ErrNoEcho)
	}
	start := s.now()
	if !s.waitLevel(ctx, gpio.Low, deadline) {
		return 0, s.waitErr(ctx, ErrEchoTimeout)
	}
	return s.now().Sub(start), nil
}

// Measure runs one trigger and echo cycle and converts the result.
func (s *Sensor) Measure(ctx context.Context) (Reading, error) {
	// Re-arming the input drops edges latched since the last cycle.
	if err := s.Echo.In(gpio.PullDown, gpio.BothEdges); err != nil {
		return Reading{}, fmt.Errorf("echo %s: %w", s.Echo, err)
	}
	if err := s.Pulse(); err != nil {
		return Reading{}, fmt.Errorf("trigger %s: %w", s.Trigger, err)
	}
	d, err := s.PulseIn(ctx)
	if err != nil {
		return Reading{}, err
	}
	r := Reading{Echo: d}
	r.DistanceCM = distanceCM(r.Micros())
	return r, nil
}

// waitLevel blocks until the echo line reads want.  It returns false when
// the deadline passes or ctx is done first.
func (s *Sensor) waitLevel(ctx context.Context, want gpio.Level, deadline time.Time) bool {
	for s.Echo.Read() != want {
		if ctx.Err() != nil {
			return false
		}
		remaining := deadline.Sub(s.now())
		if remaining <= 0 {
			return false
		}
		if remaining > maxEdgeWait {
			remaining = maxEdgeWait
		}
		s.Echo.WaitForEdge(remaining)
	}
	return true
}

func (s *Sensor) waitErr(ctx context.Context, timeout error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return timeout
}
