package session

import (
	"context"
	"errors"
	"sync"

	"shadow-studio/internal/shadow"
)

// ErrSuperseded is returned to a Submit caller whose request was replaced
// by a newer one before its result could be published.
var ErrSuperseded = errors.New("session: superseded by a newer request")

// Output is a published render.
type Output struct {
	Seq    uint64
	Result shadow.Result
}

// Renderer runs generations for one session. Every Submit takes a new
// sequence number and cancels the previous submission; only a result whose
// sequence is still the newest is published.
type Renderer struct {
	mu      sync.Mutex
	seq     uint64
	cancel  context.CancelFunc
	latest  *Output
	updates chan Output

	generate func(shadow.Request) (shadow.Result, error)
}

// NewRenderer creates a renderer backed by shadow.Generate.
func NewRenderer() *Renderer {
	return &Renderer{
		updates:  make(chan Output, 1),
		generate: shadow.Generate,
	}
}

type outcome struct {
	res shadow.Result
	err error
}

// Submit renders req and waits for the result. It returns ErrSuperseded if
// a later Submit arrived first, or ctx's error if ctx ends. A generation
// already running when it is superseded finishes in the background and its
// result is dropped.
func (r *Renderer) Submit(ctx context.Context, req shadow.Request) (shadow.Result, error) {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.seq++
	seq := r.seq
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		res, err := r.generate(req)
		done <- outcome{res, err}
	}()

	select {
	case <-ctx.Done():
		if !r.isLatest(seq) {
			return shadow.Result{}, ErrSuperseded
		}
		return shadow.Result{}, ctx.Err()
	case o := <-done:
		if o.err != nil {
			return shadow.Result{}, o.err
		}
		if !r.publish(seq, o.res) {
			return shadow.Result{}, ErrSuperseded
		}
		return o.res, nil
	}
}

func (r *Renderer) isLatest(seq uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return seq == r.seq
}

func (r *Renderer) publish(seq uint64, res shadow.Result) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if seq != r.seq {
		return false
	}
	out := Output{Seq: seq, Result: res}
	r.latest = &out

	// Keep only the newest unread update
	select {
	case <-r.updates:
	default:
	}
	r.updates <- out
	return true
}

// Latest returns the most recently published render.
func (r *Renderer) Latest() (Output, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.latest == nil {
		return Output{}, false
	}
	return *r.latest, true
}

// Updates delivers published renders. Unread updates are replaced by newer
// ones, so a slow reader only sees the newest.
func (r *Renderer) Updates() <-chan Output {
	return r.updates
}
