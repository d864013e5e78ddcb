package heartrate

import "github.com/cwbudde/algo-rppg/dsp/core"

// Pacer eases a displayed value toward the latest estimate so a display
// refreshed more often than estimates arrive changes gradually.
type Pacer struct {
	updates int
	maxStep float64

	started bool
	shown   float64
	target  float64
	step    float64
}

// NewPacer returns a pacer that covers the distance to a new target in
// updates ticks, moving at most maxStep per tick.
func NewPacer(updates int, maxStep float64) *Pacer {
	return &Pacer{
		updates: max(updates, 1),
		maxStep: maxStep,
	}
}

// SetTarget sets the value to approach. The first target is shown
// immediately.
func (p *Pacer) SetTarget(bpm float64) {
	if !p.started {
		p.started = true
		p.shown = bpm
		p.target = bpm
		p.step = 0
		return
	}

	p.target = bpm
	p.step = core.Clamp((p.target-p.shown)/float64(p.updates), -p.maxStep, p.maxStep)
}

// Tick advances the shown value by one step without passing the target
// and returns it.
func (p *Pacer) Tick() float64 {
	if p.shown == p.target || p.step == 0 {
		return p.shown
	}

	next := p.shown + p.step
	if (p.step > 0 && next >= p.target) || (p.step < 0 && next <= p.target) {
		next = p.target
	}

	p.shown = next

	return p.shown
}

// Value returns the shown value without advancing.
func (p *Pacer) Value() float64 { return p.shown }

// Target returns the value being approached.
func (p *Pacer) Target() float64 { return p.target }

// Reset forgets the shown value.
func (p *Pacer) Reset() {
	*p = Pacer{updates: p.updates, maxStep: p.maxStep}
}
