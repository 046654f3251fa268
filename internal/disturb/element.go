package disturb

import (
	"fmt"
	"math"
	"time"

	"github.com/guiltyguilty/disturb/internal/domain"
	"github.com/jonboulle/clockwork"
)

const (
	DefaultRate         = 0.001
	DefaultRestoreDelay = 100 * time.Millisecond
	DefaultAlphabet     = "abcdefghijklmnopqrstuvwxyz@[]%&/ "
)

// Element scrambles the text of a single target and restores it after a
// fixed delay. The original text is captured once at construction.
type Element struct {
	id           string
	target       domain.TextTarget
	original     string
	rate         float64
	restoreDelay time.Duration
	alphabet     []rune

	clock    clockwork.Clock
	rng      Rand
	recorder domain.DisturbRecorder
}

// ElementOption configures an Element.
type ElementOption func(*Element)

// WithID sets the identifier used in logs and metrics.
func WithID(id string) ElementOption {
	return func(e *Element) { e.id = id }
}

// WithRate sets the element's intensity weight, in firings per millisecond.
func WithRate(rate float64) ElementOption {
	return func(e *Element) { e.rate = rate }
}

// WithRestoreDelay sets how long scrambled text stays visible.
func WithRestoreDelay(d time.Duration) ElementOption {
	return func(e *Element) { e.restoreDelay = d }
}

// WithAlphabet sets the substitute characters used when scrambling.
func WithAlphabet(alphabet string) ElementOption {
	return func(e *Element) { e.alphabet = []rune(alphabet) }
}

func WithElementClock(clock clockwork.Clock) ElementOption {
	return func(e *Element) { e.clock = clock }
}

func WithElementRand(r Rand) ElementOption {
	return func(e *Element) { e.rng = r }
}

func WithElementRecorder(r domain.DisturbRecorder) ElementOption {
	return func(e *Element) { e.recorder = r }
}

// NewElement snapshots the target's current text and resets the target to it.
func NewElement(target domain.TextTarget, opts ...ElementOption) (*Element, error) {
	e := &Element{
		target:       target,
		original:     target.Text(),
		rate:         DefaultRate,
		restoreDelay: DefaultRestoreDelay,
		alphabet:     []rune(DefaultAlphabet),
		clock:        clockwork.NewRealClock(),
		rng:          globalRand{},
		recorder:     domain.NopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.rate <= 0 || math.IsNaN(e.rate) || math.IsInf(e.rate, 0) {
		return nil, fmt.Errorf("element %q: %w: got %v", e.id, domain.ErrInvalidRate, e.rate)
	}
	if e.restoreDelay <= 0 {
		return nil, fmt.Errorf("element %q: %w: got %v", e.id, domain.ErrInvalidRestoreDelay, e.restoreDelay)
	}
	if len(e.alphabet) == 0 {
		return nil, fmt.Errorf("element %q: %w", e.id, domain.ErrEmptyAlphabet)
	}

	e.Reset()
	return e, nil
}

func (e *Element) ID() string                  { return e.id }
func (e *Element) Rate() float64               { return e.rate }
func (e *Element) RestoreDelay() time.Duration { return e.restoreDelay }
func (e *Element) Alphabet() string            { return string(e.alphabet) }
func (e *Element) Original() string            { return e.original }

// Text is what the target currently displays.
func (e *Element) Text() string { return e.target.Text() }

// Sample returns n distinct positions drawn uniformly from [0, length).
// Callers guarantee 0 <= n <= length.
func (e *Element) Sample(n, length int) []int {
	return sample(e.rng, n, length)
}

// Disturb replaces a uniformly sized random subset of the original runes with
// alphabet runes, writes the result to the target and schedules a restore.
// Overlapping calls are not serialised: every scheduled restore fires and
// writes the original text, whatever a later Disturb wrote in between.
func (e *Element) Disturb() string {
	runes := []rune(e.original)
	n := e.rng.IntN(len(runes) + 1)

	for _, pos := range e.Sample(n, len(runes)) {
		runes[pos] = e.alphabet[e.rng.IntN(len(e.alphabet))]
	}

	scrambled := string(runes)
	e.target.SetText(scrambled)
	e.recorder.Scrambled(e.id, n)

	e.clock.AfterFunc(e.restoreDelay, e.restore)
	return scrambled
}

// Reset writes the original text back to the target. Idempotent.
func (e *Element) Reset() {
	e.target.SetText(e.original)
}

func (e *Element) restore() {
	e.Reset()
	e.recorder.Restored(e.id)
}
