package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// errBuzzer marks failures to drive the buzzer pin.
var errBuzzer = errors.New("buzzer")

// rangeFinder is what the alarm needs from a distance sensor.
type rangeFinder interface {
	Measure(ctx context.Context) (Reading, error)
}

// alarmOn reports whether a distance should sound the buzzer.  The threshold
// is inclusive.
func alarmOn(distance, threshold float64) bool {
	return distance <= threshold
}

// Alarm ties a range finder to a buzzer: at or below the threshold the
// buzzer is driven high, above it low.
type Alarm struct {
	sensor         rangeFinder
	buzzer         gpio.PinOut
	threshold      float64
	interval       time.Duration
	alarmOnTimeout bool
	logger         *EventLogger

	on      bool  // level last driven onto the buzzer
	lastErr error // previous measurement failure, nil once recovered
}

// NewAlarm builds an alarm from the loop settings in cfg.
func NewAlarm(sensor rangeFinder, buzzer gpio.PinOut, cfg Config, logger *EventLogger) *Alarm {
	return &Alarm{
		sensor:         sensor,
		buzzer:         buzzer,
		threshold:      cfg.ThresholdCM,
		interval:       time.Duration(cfg.LoopInterval),
		alarmOnTimeout: cfg.AlarmOnTimeout,
		logger:         logger,
	}
}

// Setup configures the buzzer as an output, silent.
func (a *Alarm) Setup() error {
	if err := a.buzzer.Out(gpio.Low); err != nil {
		return fmt.Errorf("%w %s: %w", errBuzzer, a.buzzer, err)
	}
	a.on = false
	return nil
}

// On reports whether the buzzer is currently driven high.
func (a *Alarm) On() bool { return a.on }

// Step runs one iteration: measure, compare, drive the buzzer.
//
// A lost or overlong echo leaves the buzzer as it was, unless the alarm was
// configured to treat it as distance 0.  The measurement error is returned
// either way.
func (a *Alarm) Step(ctx context.Context) (Reading, error) {
	r, err := a.sensor.Measure(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return r, err
		}
		if !errors.Is(a.lastErr, err) {
			a.logger.Log("measurement failed: %v", err)
		}
		a.lastErr = err
		if a.alarmOnTimeout && (errors.Is(err, ErrNoEcho) || errors.Is(err, ErrEchoTimeout)) {
			if serr := a.set(true, 0); serr != nil {
				return r, serr
			}
		}
		return r, err
	}
	if a.lastErr != nil {
		a.logger.Log("measurement recovered: %.2f cm", r.DistanceCM)
		a.lastErr = nil
	}
	return r, a.set(alarmOn(r.DistanceCM, a.threshold), r.DistanceCM)
}

// Run repeats Step until ctx is cancelled, then silences the buzzer.
// Measurement failures are logged by Step and do not stop the loop; a
// failure to drive the buzzer does.
func (a *Alarm) Run(ctx context.Context) error {
	a.logger.Log("alarm started: threshold %.2f cm", a.threshold)
	defer func() {
		if err := a.buzzer.Out(gpio.Low); err != nil {
			a.logger.Log("buzzer %s: %v", a.buzzer, err)
		}
		a.on = false
		a.logger.Log("alarm stopped")
	}()
	for {
		if ctx.Err() != nil {
			return nil
		}
		if _, err := a.Step(ctx); errors.Is(err, errBuzzer) {
			return err
		}
		if a.interval > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(a.interval):
			}
		}
	}
}

// set drives the buzzer and logs transitions.
func (a *Alarm) set(on bool, distance float64) error {
	level := gpio.Low
	if on {
		level = gpio.High
	}
	if err := a.buzzer.Out(level); err != nil {
		return fmt.Errorf("%w %s: %w", errBuzzer, a.buzzer, err)
	}
	if on != a.on {
		if on {
			a.logger.Log("alarm on: %.2f cm", distance)
		} else {
			a.logger.Log("alarm off: %.2f cm", distance)
		}
	}
	a.on = on
	return nil
}
