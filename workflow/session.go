// Package workflow drives the interactive flows: the guided price
// submission and the confirm/cancel pattern used by destructive
// commands. Each flow instance is scoped by a correlation token so
// responses from other instances (or other users) never reach it.
package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Await bounds. The form gets the long bound, the row selector a short
// one, destructive confirmations the shortest.
const (
	FormTimeout    = 5 * time.Minute
	SelectTimeout  = time.Minute
	ConfirmTimeout = 30 * time.Second
)

// ErrTimeout is returned by a Surface when no qualifying response
// arrived within the bound.
var ErrTimeout = errors.New("interaction timed out")

// Session identifies one flow instance: who started it and the token
// every subsequent response must carry.
type Session struct {
	Token  string
	UserID string
}

// NewSession mints a session for the given requester.
func NewSession(userID string) Session {
	return Session{Token: uuid.NewString(), UserID: userID}
}

// Matches reports whether a response token belongs to this instance.
// Stale and cross-instance responses fail this check and are dropped.
func (s Session) Matches(token string) bool {
	return s.Token == token
}

// FormField describes one input of a submission form.
type FormField struct {
	ID          string
	Label       string
	Placeholder string
	Value       string
	Required    bool
}

// SelectOption is one choice of a single-select menu.
type SelectOption struct {
	Label string
	Value string
}

// Summary is the confirmation payload delivered after a successful
// submission.
type Summary struct {
	ItemName string
	RowName  string
	MinCount int
	MaxCount *int
	MinWLs   int
	MaxWLs   *int
	SavedAt  time.Time
}

// Surface is the chat platform seen from a flow: present something,
// block cooperatively until a qualifying response or the bound expires.
// Implementations must only deliver responses whose token matches the
// session and, for confirms, whose author is the session user.
type Surface interface {
	// PresentForm shows a structured form and waits for its submission.
	// Returns the raw field values keyed by field id, or ErrTimeout.
	PresentForm(ctx context.Context, s Session, title string, fields []FormField, timeout time.Duration) (map[string]string, error)

	// PresentSelect shows a single-choice menu (exactly one option must
	// be picked) and waits for the choice, or ErrTimeout.
	PresentSelect(ctx context.Context, s Session, prompt string, options []SelectOption, timeout time.Duration) (string, error)

	// PresentConfirm shows a confirm/cancel pair and waits. Returns
	// false on explicit cancel, ErrTimeout when the bound expires.
	PresentConfirm(ctx context.Context, s Session, prompt string, timeout time.Duration) (bool, error)

	// ExpireSelection edits the pending selector message in place to a
	// notice and strips its interactive components.
	ExpireSelection(ctx context.Context, s Session, notice string) error

	// Reply sends a plain message to the invocation channel.
	Reply(ctx context.Context, s Session, content string) error

	// Deliver sends the submission summary with the rendered table.
	Deliver(ctx context.Context, s Session, summary Summary, image []byte) error

	// Cleanup removes this instance's leftover interactive messages
	// where the platform permits.
	Cleanup(ctx context.Context, s Session) error
}

// ConfirmOutcome is the result of a confirmation sub-flow.
type ConfirmOutcome int

const (
	Confirmed ConfirmOutcome = iota
	Canceled
	Expired
)

// AwaitConfirmation runs the reusable confirm/cancel pattern: present
// the prompt and map response, cancel and timeout onto the three
// outcomes. Only responses from the session user count; the surface
// ignores everyone else's clicks.
func AwaitConfirmation(ctx context.Context, surface Surface, s Session, prompt string) (ConfirmOutcome, error) {
	confirmed, err := surface.PresentConfirm(ctx, s, prompt, ConfirmTimeout)
	if errors.Is(err, ErrTimeout) {
		return Expired, nil
	}
	if err != nil {
		return Canceled, err
	}
	if !confirmed {
		return Canceled, nil
	}
	return Confirmed, nil
}
