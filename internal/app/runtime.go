package app

import (
	"context"
	"log/slog"

	"github.com/guiltyguilty/disturb/internal/disturb"
	"github.com/guiltyguilty/disturb/internal/domain"
)

// Runtime is a started disturb service bound to the elements of a document.
type Runtime struct {
	service  *disturb.Service
	elements []*disturb.Element
	byID     map[string]*disturb.Element
}

func newRuntime(svc *disturb.Service, elements []*disturb.Element) *Runtime {
	byID := make(map[string]*disturb.Element, len(elements))
	for _, e := range elements {
		byID[e.ID()] = e
	}
	return &Runtime{service: svc, elements: elements, byID: byID}
}

func (r *Runtime) Service() *disturb.Service { return r.service }

// Elements describes every member in document order.
func (r *Runtime) Elements() []domain.ElementInfo {
	out := make([]domain.ElementInfo, 0, len(r.elements))
	for _, e := range r.elements {
		out = append(out, describe(e))
	}
	return out
}

func (r *Runtime) Element(id string) (domain.ElementInfo, error) {
	e, ok := r.byID[id]
	if !ok {
		return domain.ElementInfo{}, domain.ErrElementNotFound
	}
	return describe(e), nil
}

// DisturbElement scrambles one element immediately, outside the random
// schedule. The usual restore follows after the element's delay.
func (r *Runtime) DisturbElement(ctx context.Context, id string) (string, error) {
	e, ok := r.byID[id]
	if !ok {
		return "", domain.ErrElementNotFound
	}
	if r.service.State() == disturb.StateStopped {
		return "", domain.ErrServiceStopped
	}

	scrambled := e.Disturb()
	slog.DebugContext(ctx, "Manually disturbed element", "element", id)
	return scrambled, nil
}

func (r *Runtime) Stop() {
	r.service.Stop()
}

func describe(e *disturb.Element) domain.ElementInfo {
	return domain.ElementInfo{
		ID:             e.ID(),
		Rate:           e.Rate(),
		RestoreDelayMS: e.RestoreDelay().Milliseconds(),
		Alphabet:       e.Alphabet(),
		Original:       e.Original(),
		Text:           e.Text(),
	}
}
