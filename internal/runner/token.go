package runner

import (
	"sync"
	"sync/atomic"
)

// CancelToken is polled by the runner on every read iteration and
// watched for requests that arrive while the child is silent.
type CancelToken interface {
	Requested() bool
	Done() <-chan struct{}
}

var _ CancelToken = (*Token)(nil)

// Token is a one-shot cancellation flag.
type Token struct {
	requested atomic.Bool
	once      sync.Once
	done      chan struct{}
}

// NewToken returns a token that has not been requested.
func NewToken() *Token {
	return &Token{done: make(chan struct{})}
}

// Request sets the flag. Calling it more than once is harmless.
func (t *Token) Request() {
	t.once.Do(func() {
		t.requested.Store(true)
		close(t.done)
	})
}

// Requested reports whether Request has been called.
func (t *Token) Requested() bool {
	return t.requested.Load()
}

// Done is closed once Request has been called.
func (t *Token) Done() <-chan struct{} {
	return t.done
}
