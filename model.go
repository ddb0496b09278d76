package main

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that reads and writes as a Go duration string
// ("1s", "250ms") in config.yaml.
type Duration time.Duration

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Config is the top‑level structure serialized to config.yaml.  Pins are BCM
// numbers; they are looked up as "GPIO<n>".
type Config struct {
	TriggerPin     int      `yaml:"trigger_pin"`      // output, starts the ping
	EchoPin        int      `yaml:"echo_pin"`         // input, high for the round trip
	BuzzerPin      int      `yaml:"buzzer_pin"`       // output, high while alarmed
	ThresholdCM    float64  `yaml:"threshold_cm"`     // alarm at or below this distance
	EchoTimeout    Duration `yaml:"echo_timeout"`     // bound on a single measurement
	LoopInterval   Duration `yaml:"loop_interval"`    // pause between iterations, 0 for none
	AlarmOnTimeout bool     `yaml:"alarm_on_timeout"` // treat a lost echo as distance 0
	LogFile        string   `yaml:"log_file"`         // empty logs to stderr
}

// Reading is the result of one measurement.
type Reading struct {
	Echo       time.Duration // width of the echo pulse
	DistanceCM float64
}

// Micros returns the echo width in whole microseconds.
func (r Reading) Micros() int64 {
	return r.Echo.Microseconds()
}
