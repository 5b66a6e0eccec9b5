package scheduler

import (
	"math/rand"
	"sync"
	"time"
)

// Picker is the randomness source used by the schedulers.
// Intn returns an index in [0, n) for n > 0.
type Picker interface {
	Intn(n int) int
}

// RandomPicker draws indexes from a time-seeded math/rand source
type RandomPicker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomPicker creates a picker seeded from the clock
func NewRandomPicker() *RandomPicker {
	return &RandomPicker{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Intn returns a uniform index in [0, n)
func (p *RandomPicker) Intn(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rnd.Intn(n)
}

// ScriptedPicker replays a fixed sequence, each value reduced modulo n.
// An empty script always returns 0.
type ScriptedPicker struct {
	Values []int
	pos    int
}

// Intn returns the next scripted value modulo n
func (p *ScriptedPicker) Intn(n int) int {
	if len(p.Values) == 0 {
		return 0
	}
	v := p.Values[p.pos%len(p.Values)]
	p.pos++
	if v < 0 {
		v = -v
	}
	return v % n
}
