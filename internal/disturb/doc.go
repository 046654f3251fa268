// Package disturb implements the glitching-text engine.
//
// An Element scrambles and later restores the text of one domain.TextTarget. A Service owns a fixed set of
// Elements and fires at exponentially distributed intervals (a Poisson process whose rate is the sum of the
// member rates), disturbing one member chosen uniformly at random on each firing. Timers come from an injected
// clockwork.Clock so tests can drive time explicitly.
package disturb
