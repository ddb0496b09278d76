package main

import (
	"context"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// fakeClock stands in for time.Now and time.Sleep.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// recorder collects pin writes and sleeps in order.
type recorder struct {
	events []string
}

func (r *recorder) add(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

// outPin records every level written to it.
type outPin struct {
	*gpiotest.Pin
	rec   *recorder
	level gpio.Level
	fail  error
}

func newOutPin(name string, rec *recorder) *outPin {
	return &outPin{Pin: &gpiotest.Pin{N: name}, rec: rec}
}

func (p *outPin) Out(l gpio.Level) error {
	if p.fail != nil {
		return p.fail
	}
	p.level = l
	if p.rec != nil {
		p.rec.add("%s:%s", p.N, l)
	}
	return nil
}

// edge is a level change that happens after a delay, measured from the
// previous edge (or the first wait).
type edge struct {
	after time.Duration
	level gpio.Level
}

// fakeEcho replays a scripted list of edges against a fakeClock.
type fakeEcho struct {
	*gpiotest.Pin
	clock   *fakeClock
	level   gpio.Level
	edges   []edge
	inCalls int
}

func newFakeEcho(clock *fakeClock, initial gpio.Level, edges ...edge) *fakeEcho {
	return &fakeEcho{Pin: &gpiotest.Pin{N: "echo"}, clock: clock, level: initial, edges: edges}
}

func (p *fakeEcho) In(gpio.Pull, gpio.Edge) error {
	p.inCalls++
	return nil
}

func (p *fakeEcho) Read() gpio.Level { return p.level }

func (p *fakeEcho) WaitForEdge(timeout time.Duration) bool {
	if len(p.edges) == 0 {
		p.clock.advance(timeout)
		return false
	}
	e := &p.edges[0]
	if e.after > timeout {
		p.clock.advance(timeout)
		e.after -= timeout
		return false
	}
	p.clock.advance(e.after)
	p.level = e.level
	p.edges = p.edges[1:]
	return true
}

// echoPulse scripts a clean pulse of the given width.
func echoPulse(width time.Duration) []edge {
	return []edge{{after: 50 * time.Microsecond, level: gpio.High}, {after: width, level: gpio.Low}}
}

// newTestSensor wires a Sensor to fakes sharing one clock.
func newTestSensor(clock *fakeClock, rec *recorder, echo *fakeEcho) (*Sensor, *outPin) {
	trig := newOutPin("trig", rec)
	s := NewSensor(trig, echo, time.Second)
	s.now = clock.now
	s.sleep = func(d time.Duration) {
		if rec != nil {
			rec.add("sleep:%s", d)
		}
		clock.advance(d)
	}
	return s, trig
}

// scriptedRanger returns canned results, one per Measure call.
type scriptedRanger struct {
	results []scriptedResult
	calls   int
	after   func(calls int) // runs after each Measure
}

type scriptedResult struct {
	r   Reading
	err error
}

func (s *scriptedRanger) Measure(ctx context.Context) (Reading, error) {
	var res scriptedResult
	if s.calls < len(s.results) {
		res = s.results[s.calls]
	} else if len(s.results) > 0 {
		res = s.results[len(s.results)-1]
	}
	s.calls++
	if s.after != nil {
		s.after(s.calls)
	}
	return res.r, res.err
}

func readingCM(cm float64) scriptedResult {
	return scriptedResult{r: Reading{DistanceCM: cm}}
}
