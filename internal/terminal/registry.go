package terminal

import (
	"sync"

	"github.com/eventcard/terminal/internal/assignment"
	"github.com/eventcard/terminal/internal/domain"
	"github.com/eventcard/terminal/internal/events"
	"github.com/eventcard/terminal/internal/pos"
	"github.com/eventcard/terminal/internal/recharge"
)

// Backend is everything a single terminal talks to.
type Backend interface {
	pos.Backend
	assignment.Backend
	recharge.Backend
}

// Terminal bundles the state of one operator terminal.
type Terminal struct {
	ID         string
	POS        *pos.Session
	Assignment *assignment.Session
	Recharge   *recharge.Station
}

type Registry struct {
	backend   Backend
	publisher events.Publisher
	formatter *domain.Formatter

	mu        sync.Mutex
	terminals map[string]*Terminal
}

func NewRegistry(b Backend, p events.Publisher, f *domain.Formatter) *Registry {
	if p == nil {
		p = events.Nop{}
	}
	if f == nil {
		f = domain.NewFormatter(domain.DefaultLocale, domain.DefaultSymbol)
	}
	return &Registry{
		backend:   b,
		publisher: p,
		formatter: f,
		terminals: make(map[string]*Terminal),
	}
}

// Get returns the terminal for id, creating it on first use. Repeated calls
// return the same sessions.
func (r *Registry) Get(id string) *Terminal {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.terminals[id]; ok {
		return t
	}
	t := r.newTerminal(id)
	r.terminals[id] = t
	return t
}

// Reset drops all state of terminal id. The next Get starts from scratch.
func (r *Registry) Reset(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.terminals, id)
}

func (r *Registry) newTerminal(id string) *Terminal {
	return &Terminal{
		ID: id,
		POS: pos.NewSession(id, r.backend,
			pos.WithPublisher(r.publisher),
			pos.WithFormatter(r.formatter),
		),
		Assignment: assignment.NewSession(id, r.backend, assignment.WithPublisher(r.publisher)),
		Recharge:   recharge.NewStation(id, r.backend, r.publisher),
	}
}
