package app

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/guiltyguilty/disturb/internal/disturb"
	"github.com/guiltyguilty/disturb/internal/domain"
	"github.com/guiltyguilty/disturb/internal/page"
	"github.com/jonboulle/clockwork"
)

// Per-element overrides read from the marker element's attributes.
const (
	attrRate      = "data-disturb-rate"
	attrRestoreMS = "data-disturb-restore-ms"
	attrAlphabet  = "data-disturb-alphabet"
)

// maxRestoreMS is the largest millisecond count a time.Duration can hold.
const maxRestoreMS = math.MaxInt64 / int64(time.Millisecond)

// ElementDefaults apply to every discovered element that does not override them.
type ElementDefaults struct {
	Rate         float64
	RestoreDelay time.Duration
	Alphabet     string
}

func DefaultElementDefaults() ElementDefaults {
	return ElementDefaults{
		Rate:         disturb.DefaultRate,
		RestoreDelay: disturb.DefaultRestoreDelay,
		Alphabet:     disturb.DefaultAlphabet,
	}
}

type options struct {
	clock    clockwork.Clock
	rng      disturb.Rand
	recorder domain.DisturbRecorder
}

type Option func(*options)

func WithClock(clock clockwork.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithRand shares one random source between the service and all elements.
// Access is serialised because manual disturbs run on request goroutines.
func WithRand(r disturb.Rand) Option {
	return func(o *options) { o.rng = disturb.NewLockedRand(r) }
}

func WithRecorder(r domain.DisturbRecorder) Option {
	return func(o *options) { o.recorder = r }
}

// StartDisturbService discovers every element carrying markerClass, wraps
// each in a disturb.Element, starts the service and returns it.
func StartDisturbService(ctx context.Context, doc *page.Document, markerClass string, defaults ElementDefaults, opts ...Option) (*disturb.Service, error) {
	rt, err := Start(ctx, doc, markerClass, defaults, opts...)
	if err != nil {
		return nil, err
	}
	return rt.Service(), nil
}

// Start is StartDisturbService returning the full Runtime, which also
// supports per-element lookup.
func Start(ctx context.Context, doc *page.Document, markerClass string, defaults ElementDefaults, opts ...Option) (*Runtime, error) {
	if markerClass == "" {
		return nil, domain.ErrMarkerClassRequired
	}

	o := options{
		clock:    clockwork.NewRealClock(),
		recorder: domain.NopRecorder{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	nodes := doc.Discover(markerClass)
	if len(nodes) == 0 {
		return nil, fmt.Errorf("marker class %q: %w", markerClass, domain.ErrNoMembers)
	}

	elements := make([]*disturb.Element, 0, len(nodes))
	for _, n := range nodes {
		elemOpts := append(elementOptions(n, defaults),
			disturb.WithID(n.ID()),
			disturb.WithElementClock(o.clock),
			disturb.WithElementRecorder(o.recorder),
		)
		if o.rng != nil {
			elemOpts = append(elemOpts, disturb.WithElementRand(o.rng))
		}

		e, err := disturb.NewElement(n, elemOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create element: %w", err)
		}
		elements = append(elements, e)
	}

	svcOpts := []disturb.ServiceOption{
		disturb.WithClock(o.clock),
		disturb.WithRecorder(o.recorder),
	}
	if o.rng != nil {
		svcOpts = append(svcOpts, disturb.WithRand(o.rng))
	}

	svc, err := disturb.NewService(elements, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create disturb service: %w", err)
	}

	if err := svc.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start disturb service: %w", err)
	}

	slog.Info("Disturbing elements", "marker_class", markerClass, "elements", len(elements))
	return newRuntime(svc, elements), nil
}

// elementOptions resolves the defaults and any attribute overrides for n.
// Malformed overrides are logged and ignored.
func elementOptions(n *page.Node, defaults ElementDefaults) []disturb.ElementOption {
	rate := defaults.Rate
	if v, ok := n.Attr(attrRate); ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 && !math.IsInf(parsed, 0) {
			rate = parsed
		} else {
			slog.Warn("Ignoring invalid rate override", "element", n.ID(), "value", v)
		}
	}

	delay := defaults.RestoreDelay
	if v, ok := n.Attr(attrRestoreMS); ok {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil && ms > 0 && ms <= maxRestoreMS {
			delay = time.Duration(ms) * time.Millisecond
		} else {
			slog.Warn("Ignoring invalid restore delay override", "element", n.ID(), "value", v)
		}
	}

	alphabet := defaults.Alphabet
	if v, ok := n.Attr(attrAlphabet); ok {
		if v != "" {
			alphabet = v
		} else {
			slog.Warn("Ignoring empty alphabet override", "element", n.ID())
		}
	}

	return []disturb.ElementOption{
		disturb.WithRate(rate),
		disturb.WithRestoreDelay(delay),
		disturb.WithAlphabet(alphabet),
	}
}
