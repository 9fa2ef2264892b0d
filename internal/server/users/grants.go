package users

import (
	"sync"
	"time"
)

type codeGrant struct {
	userID  string
	state   string
	expires time.Time
}

// grants holds pending sign-in states and issued authorization codes.
// Both are single use and expire after ttl.
type grants struct {
	mu     sync.Mutex
	states map[string]time.Time
	codes  map[string]codeGrant
	ttl    time.Duration
	now    func() time.Time
}

func newGrants(ttl time.Duration) *grants {
	return &grants{
		states: make(map[string]time.Time),
		codes:  make(map[string]codeGrant),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (g *grants) addState(state string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sweepLocked()
	g.states[state] = g.now().Add(g.ttl)
}

func (g *grants) takeState(state string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	exp, ok := g.states[state]
	delete(g.states, state)
	return ok && g.now().Before(exp)
}

func (g *grants) addCode(code, userID, state string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.codes[code] = codeGrant{userID: userID, state: state, expires: g.now().Add(g.ttl)}
}

func (g *grants) takeCode(code string) (codeGrant, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.codes[code]
	delete(g.codes, code)
	if !ok || !g.now().Before(c.expires) {
		return codeGrant{}, false
	}
	return c, true
}

func (g *grants) sweepLocked() {
	now := g.now()
	for s, exp := range g.states {
		if !now.Before(exp) {
			delete(g.states, s)
		}
	}
	for c, cg := range g.codes {
		if !now.Before(cg.expires) {
			delete(g.codes, c)
		}
	}
}
