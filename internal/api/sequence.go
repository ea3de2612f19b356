package api

import "sync/atomic"

// Sequencer hands out tickets for overlapping requests so only the most
// recently issued one may publish its result. Callers that fire rapid
// successive searches take a ticket before each request and check Accept
// when the response arrives; a slow earlier response then cannot
// overwrite a fast later one.
type Sequencer struct {
	latest atomic.Uint64
}

// Next issues a new ticket, invalidating all earlier ones.
func (s *Sequencer) Next() uint64 {
	return s.latest.Add(1)
}

// Accept reports whether the given ticket is still the latest issued.
func (s *Sequencer) Accept(ticket uint64) bool {
	return s.latest.Load() == ticket
}
