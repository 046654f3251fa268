package disturb

import (
	"math/rand/v2"
	"sync"
	"time"
)

type memTarget struct {
	mu     sync.Mutex
	text   string
	writes int
}

func newMemTarget(text string) *memTarget {
	return &memTarget{text: text}
}

func (m *memTarget) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

func (m *memTarget) SetText(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	m.writes++
}

type recordingRecorder struct {
	mu        sync.Mutex
	fired     []int
	scrambled []int
	restored  int
	delays    []time.Duration
}

func (r *recordingRecorder) Fired(member int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fired = append(r.fired, member)
}

func (r *recordingRecorder) Scrambled(_ string, runes int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scrambled = append(r.scrambled, runes)
}

func (r *recordingRecorder) Restored(_ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.restored++
}

func (r *recordingRecorder) Scheduled(delay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, delay)
}

func (r *recordingRecorder) firedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fired)
}

func (r *recordingRecorder) restoredCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.restored
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
