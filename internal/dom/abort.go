// internal/dom/abort.go
package dom

import "errors"

// ErrAborted is the reason recorded when Abort is called with a nil reason.
var ErrAborted = errors.New("signal is aborted without reason")

// AbortSignal is a set-once flag with a reason. It is not tied to any
// document and is not safe for concurrent use.
type AbortSignal struct {
	aborted bool
	reason  error
	onAbort []func(reason error)
}

// Aborted reports whether the signal fired.
func (s *AbortSignal) Aborted() bool { return s.aborted }

// Reason returns the abort reason, or nil before the signal fires.
func (s *AbortSignal) Reason() error { return s.reason }

// ThrowIfAborted returns the reason once aborted.
func (s *AbortSignal) ThrowIfAborted() error {
	if s.aborted {
		return s.reason
	}
	return nil
}

// OnAbort registers fn to run when the signal fires. It runs immediately
// when the signal already fired.
func (s *AbortSignal) OnAbort(fn func(reason error)) {
	if s.aborted {
		fn(s.reason)
		return
	}
	s.onAbort = append(s.onAbort, fn)
}

// AbortController owns an AbortSignal.
type AbortController struct {
	signal *AbortSignal
}

// NewAbortController creates a controller with a fresh signal.
func NewAbortController() *AbortController {
	return &AbortController{signal: &AbortSignal{}}
}

// Signal returns the controlled signal.
func (c *AbortController) Signal() *AbortSignal { return c.signal }

// Abort fires the signal. Only the first call has any effect.
func (c *AbortController) Abort(reason error) {
	s := c.signal
	if s.aborted {
		return
	}
	if reason == nil {
		reason = ErrAborted
	}
	s.aborted, s.reason = true, reason
	handlers := s.onAbort
	s.onAbort = nil
	for _, fn := range handlers {
		fn(reason)
	}
}

// AbortedSignal returns a signal that has already fired with reason.
func AbortedSignal(reason error) *AbortSignal {
	c := NewAbortController()
	c.Abort(reason)
	return c.Signal()
}
