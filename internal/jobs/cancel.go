package jobs

import (
	"errors"
	"sync"
)

// ErrCancelled is returned by pipeline stages that stop because a job's
// cancellation token was set.
var ErrCancelled = errors.New("job cancelled")

// Token is one job's cancellation signal: settable once, observable many
// times. Done exposes a channel for select-based waits; IsSet supports the
// polling checkpoints in the pipeline and the render progress adapter.
type Token struct {
	once sync.Once
	done chan struct{}
}

func newToken() *Token {
	return &Token{done: make(chan struct{})}
}

// Set marks the token. Subsequent calls are no-ops; a token is never reset.
func (t *Token) Set() {
	t.once.Do(func() { close(t.done) })
}

// IsSet reports whether cancellation has been requested.
func (t *Token) IsSet() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when the token is set.
func (t *Token) Done() <-chan struct{} {
	return t.done
}

// CancelRegistry maps job ids to cancellation tokens.
type CancelRegistry struct {
	mu     sync.Mutex
	tokens map[string]*Token
}

func NewCancelRegistry() *CancelRegistry {
	return &CancelRegistry{tokens: make(map[string]*Token)}
}

// Register creates and returns the token for a job, reusing an existing one
// if the job was already registered.
func (r *CancelRegistry) Register(id string) *Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token, ok := r.tokens[id]; ok {
		return token
	}
	token := newToken()
	r.tokens[id] = token
	return token
}

// Lookup returns the token for a job, if any.
func (r *CancelRegistry) Lookup(id string) (*Token, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[id]
	return token, ok
}

// Cancel sets the token for a job. Reports whether the job was registered.
func (r *CancelRegistry) Cancel(id string) bool {
	token, ok := r.Lookup(id)
	if !ok {
		return false
	}
	token.Set()
	return true
}

// Release drops a job's token once its pipeline has finished.
func (r *CancelRegistry) Release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, id)
}
