package testutil

import "sync"

// IntDraw returns the raw Int63 value for which rand.Rand.Intn(n) yields
// v % n (for n < 2^31). Float64 draws fed this value are close to zero.
func IntDraw(v int) int64 {
	return int64(v) << 32
}

// ScriptedSource is a rand.Source that replays a fixed sequence of Int63
// values and then returns zero forever. It lets tests pin exactly which
// training vectors the trainer picks.
type ScriptedSource struct {
	mu     sync.Mutex
	values []int64
	pos    int
	drawn  int
}

// NewScriptedSource returns a source replaying values in order.
func NewScriptedSource(values ...int64) *ScriptedSource {
	return &ScriptedSource{values: values}
}

// Int63 implements rand.Source.
func (s *ScriptedSource) Int63() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawn++
	if s.pos >= len(s.values) {
		return 0
	}
	v := s.values[s.pos]
	s.pos++
	return v
}

// Seed implements rand.Source. It rewinds the script and resets the
// draw count.
func (s *ScriptedSource) Seed(int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = 0
	s.drawn = 0
}

// Consumed returns how many Int63 calls were made, including those past
// the end of the script.
func (s *ScriptedSource) Consumed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawn
}
