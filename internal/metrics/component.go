package metrics

import (
	"fmt"

	"github.com/san-kum/pgdyn/internal/dynamo"
)

// Peak tracks the largest value a state component takes.
type Peak struct {
	name    string
	index   int
	max     float64
	samples int
}

func NewPeak(index int, label string) *Peak {
	return &Peak{name: fmt.Sprintf("peak_%s", label), index: index}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(x dynamo.State, t float64) {
	if p.index >= len(x) {
		return
	}
	if p.samples == 0 || x[p.index] > p.max {
		p.max = x[p.index]
	}
	p.samples++
}

func (p *Peak) Value() float64 { return p.max }

func (p *Peak) Reset() {
	p.max = 0
	p.samples = 0
}

// Final records the last observed value of a component.
type Final struct {
	name  string
	index int
	last  float64
}

func NewFinal(index int, label string) *Final {
	return &Final{name: fmt.Sprintf("final_%s", label), index: index}
}

func (f *Final) Name() string { return f.name }

func (f *Final) Observe(x dynamo.State, t float64) {
	if f.index < len(x) {
		f.last = x[f.index]
	}
}

func (f *Final) Value() float64 { return f.last }

func (f *Final) Reset() { f.last = 0 }

// Never is reported by ZeroTime when the component stayed positive.
const Never = -1.0

// ZeroTime is the first sample time at which a component was at or below
// zero, or Never.
type ZeroTime struct {
	name  string
	index int
	at    float64
	hit   bool
}

func NewZeroTime(index int, label string) *ZeroTime {
	return &ZeroTime{name: fmt.Sprintf("zero_time_%s", label), index: index, at: Never}
}

func (z *ZeroTime) Name() string { return z.name }

func (z *ZeroTime) Observe(x dynamo.State, t float64) {
	if z.hit || z.index >= len(x) {
		return
	}
	if x[z.index] <= 0 {
		z.at = t
		z.hit = true
	}
}

func (z *ZeroTime) Value() float64 { return z.at }

func (z *ZeroTime) Reset() {
	z.at = Never
	z.hit = false
}
