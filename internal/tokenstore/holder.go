package tokenstore

import (
	"context"
	"strings"
	"sync"
)

// State is the validity of the held credential.
type State string

const (
	// StateNone means no credential is set.
	StateNone State = "none"
	// StateUnchecked means a persisted credential was loaded but has not
	// been revalidated yet.
	StateUnchecked State = "unchecked"
	// StateValid means the last identity check succeeded.
	StateValid State = "valid"
	// StateInvalid means the last identity check failed; nothing persisted.
	StateInvalid State = "invalid"
)

// CredentialChecker performs the authenticated identity check. Satisfied by
// the gitmetrics client.
type CredentialChecker interface {
	CheckCredential(ctx context.Context, token string) (login string, err error)
}

// Holder owns the process-wide credential: it loads it at startup,
// revalidates it on explicit submission, and hands it to every fetcher via
// Token. All methods are safe for concurrent handlers.
type Holder struct {
	mu      sync.Mutex
	store   Store
	checker CredentialChecker
	token   string
	login   string
	state   State
}

func NewHolder(store Store, checker CredentialChecker) *Holder {
	return &Holder{store: store, checker: checker, state: StateNone}
}

// Load pulls any persisted credential. A stored token starts out unchecked;
// it is only trusted after an explicit Validate.
func (h *Holder) Load() error {
	token, err := h.store.Get()
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
	if token == "" {
		h.state = StateNone
	} else {
		h.state = StateUnchecked
	}
	return nil
}

// Validate checks the submitted token against the identity endpoint. A blank
// submission clears the credential. A failed check discards any persisted
// token and marks the holder invalid; the caller must resubmit explicitly.
func (h *Holder) Validate(ctx context.Context, token string) (State, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return h.reset(StateNone)
	}

	login, err := h.checker.CheckCredential(ctx, token)
	if err != nil {
		if _, resetErr := h.reset(StateInvalid); resetErr != nil {
			return StateInvalid, resetErr
		}
		return StateInvalid, nil
	}

	if err := h.store.Set(token); err != nil {
		return StateInvalid, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
	h.login = login
	h.state = StateValid
	return StateValid, nil
}

// Clear removes the persisted credential unconditionally.
func (h *Holder) Clear() error {
	_, err := h.reset(StateNone)
	return err
}

func (h *Holder) reset(state State) (State, error) {
	err := h.store.Delete()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = ""
	h.login = ""
	h.state = state
	return state, err
}

// Token returns the current credential, empty when none is held. Implements
// the fetchers' token source.
func (h *Holder) Token() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.token
}

// State returns the current validity state.
func (h *Holder) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Login returns the identity resolved by the last successful validation.
func (h *Holder) Login() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.login
}
