package assignment

import (
	"context"
	"net/mail"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/eventcard/terminal/internal/backend"
	"github.com/eventcard/terminal/internal/domain"
	"github.com/eventcard/terminal/internal/events"
	"github.com/eventcard/terminal/internal/logging"
)

const (
	MinSearchLength = 2
	MaxResults      = 10
)

type Backend interface {
	UnassignedAttendees(ctx context.Context) ([]domain.Attendee, error)
	VerifyCard(ctx context.Context, number string) (domain.CardStatus, error)
	AssignCard(ctx context.Context, attendeeID int64, number string) (backend.Assignment, error)
	RegisterAttendee(ctx context.Context, in backend.AttendeeInput) (domain.Attendee, error)
}

// View is what the assignment form shows.
type View struct {
	Loaded        bool               `json:"loaded"`
	Candidates    int                `json:"candidates"`
	Selected      *domain.Attendee   `json:"selected,omitempty"`
	Status        *domain.CardStatus `json:"status,omitempty"`
	State         domain.CardState   `json:"state,omitempty"`
	StatusMessage string             `json:"status_message,omitempty"`
	CanSubmit     bool               `json:"can_submit"`
}

type Option func(*Session)

func WithPublisher(p events.Publisher) Option {
	return func(s *Session) { s.publisher = p }
}

// Session holds the card assignment form of one terminal.
type Session struct {
	terminalID string
	backend    Backend
	publisher  events.Publisher

	mu         sync.Mutex
	loaded     bool
	candidates []domain.Attendee
	selected   *domain.Attendee
	status     *domain.CardStatus
	verifySeq  uint64
	submitting bool
}

func NewSession(terminalID string, b Backend, opts ...Option) *Session {
	s := &Session{terminalID: terminalID, backend: b, publisher: events.Nop{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the attendees without a card the first time it is called.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()
	if loaded {
		return nil
	}
	return s.Reload(ctx)
}

func (s *Session) Reload(ctx context.Context) error {
	list, err := s.backend.UnassignedAttendees(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates = list
	s.loaded = true
	return nil
}

// Search matches term against name, email, phone and id, case-insensitively.
func (s *Session) Search(term string) []domain.Attendee {
	term = strings.ToLower(strings.TrimSpace(term))
	if len([]rune(term)) < MinSearchLength {
		return []domain.Attendee{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Attendee, 0, MaxResults)
	for _, a := range s.candidates {
		if a.Matches(term) {
			out = append(out, a)
			if len(out) == MaxResults {
				break
			}
		}
	}
	return out
}

func (s *Session) Select(id int64) (domain.Attendee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.candidates {
		if a.ID == id {
			sel := a
			s.selected = &sel
			return sel, nil
		}
	}
	return domain.Attendee{}, domain.ErrAttendeeNotFound
}

func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

// Verify checks the format locally, then asks the backend about the card.
func (s *Session) Verify(ctx context.Context, number string) (domain.CardStatus, error) {
	n, err := domain.ValidateCardNumber(number)

	s.mu.Lock()
	s.verifySeq++
	seq := s.verifySeq
	s.status = nil
	s.mu.Unlock()
	if err != nil {
		return domain.CardStatus{}, err
	}

	st, err := s.backend.VerifyCard(ctx, n)
	if err != nil {
		return domain.CardStatus{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.verifySeq {
		return domain.CardStatus{}, domain.ErrStaleLookup
	}
	s.status = &st
	return st, nil
}

// Submit assigns number to the selected attendee. It refuses a card that is
// actively held by somebody else.
func (s *Session) Submit(ctx context.Context, number string) (backend.Assignment, error) {
	l := logging.FromContext(ctx).With(zap.String("terminal", s.terminalID))

	n, err := domain.ValidateCardNumber(number)
	if err != nil {
		return backend.Assignment{}, err
	}

	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return backend.Assignment{}, domain.ErrRequestInFlight
	}
	if s.selected == nil {
		s.mu.Unlock()
		return backend.Assignment{}, domain.ErrAttendeeRequired
	}
	attendee := *s.selected
	var status *domain.CardStatus
	if s.status != nil && s.status.Number == n {
		st := *s.status
		status = &st
	}
	s.submitting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	if status == nil {
		st, err := s.backend.VerifyCard(ctx, n)
		if err != nil {
			return backend.Assignment{}, err
		}
		status = &st
	}
	if status.BlocksAssignmentTo(attendee.ID) {
		return backend.Assignment{}, domain.PreconditionError("La tarjeta ya está asignada a " + status.AttendeeName)
	}

	res, err := s.backend.AssignCard(ctx, attendee.ID, n)
	if err != nil {
		l.Info("card assignment rejected", zap.String("card", n), zap.Int64("attendee_id", attendee.ID), zap.Error(err))
		return backend.Assignment{}, err
	}

	s.mu.Lock()
	kept := s.candidates[:0]
	for _, a := range s.candidates {
		if a.ID != attendee.ID {
			kept = append(kept, a)
		}
	}
	s.candidates = kept
	s.selected = nil
	s.status = nil
	s.mu.Unlock()

	l.Info("card assigned", zap.String("card", n), zap.Int64("attendee_id", attendee.ID))
	e := events.New(events.CardAssigned, s.terminalID, n)
	e.Detail = attendee.Name
	events.Emit(ctx, s.publisher, e)
	return res, nil
}

// Register creates an attendee and makes them available for assignment.
func (s *Session) Register(ctx context.Context, in backend.AttendeeInput) (domain.Attendee, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Name == "" {
		return domain.Attendee{}, domain.FormatError("nombre", "El nombre es obligatorio")
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			return domain.Attendee{}, domain.FormatError("email", "El email no es válido")
		}
	}

	a, err := s.backend.RegisterAttendee(ctx, in)
	if err != nil {
		return domain.Attendee{}, err
	}

	s.mu.Lock()
	s.candidates = append(s.candidates, a)
	s.mu.Unlock()
	return a, nil
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{Loaded: s.loaded, Candidates: len(s.candidates)}
	if s.selected != nil {
		a := *s.selected
		v.Selected = &a
	}
	if s.status != nil {
		st := *s.status
		v.Status = &st
		v.State = st.State()
		v.StatusMessage = st.Message()
	}
	v.CanSubmit = v.Selected != nil && !s.submitting &&
		(v.Status == nil || !v.Status.BlocksAssignmentTo(v.Selected.ID))
	return v
}
