package resilience

import "sync"

// SingleFlight collapses concurrent calls that share a key into one
// execution. Provider clients key on request path so a burst of identical
// directory or schedule lookups hits the upstream once.
type SingleFlight struct {
	mu       sync.Mutex
	inflight map[string]*flightResult
}

type flightResult struct {
	done sync.WaitGroup
	val  any
	err  error
}

// Do runs fn unless a call with the same key is already in flight, in which
// case it waits for that call and returns its result. The third return value
// reports whether the result was shared.
func (g *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	g.mu.Lock()
	if g.inflight == nil {
		g.inflight = make(map[string]*flightResult)
	}
	if leader, ok := g.inflight[key]; ok {
		g.mu.Unlock()
		leader.done.Wait()
		return leader.val, leader.err, true
	}

	result := &flightResult{}
	result.done.Add(1)
	g.inflight[key] = result
	g.mu.Unlock()

	result.val, result.err = fn()
	result.done.Done()

	g.mu.Lock()
	delete(g.inflight, key)
	g.mu.Unlock()

	return result.val, result.err, false
}
