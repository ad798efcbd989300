package command

import (
	"context"
	"sync"
)

// Fake is a scripted Runner for tests. Responses are looked up by the full
// command line (Invocation.String). When no scripted response matches,
// Handler is consulted; if it is nil the call fails with exit status 127.
type Fake struct {
	Responses map[string]Result
	Errors    map[string]error
	Handler   func(inv Invocation) (Result, error)

	mu    sync.Mutex
	calls []Invocation
}

// NewFake returns an empty Fake.
func NewFake() *Fake {
	return &Fake{Responses: make(map[string]Result), Errors: make(map[string]error)}
}

// On scripts the result for a command line.
func (f *Fake) On(cmdline string, r Result) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Responses == nil {
		f.Responses = make(map[string]Result)
	}
	f.Responses[cmdline] = r
	return f
}

// Fail scripts an error for a command line.
func (f *Fake) Fail(cmdline string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Errors == nil {
		f.Errors = make(map[string]error)
	}
	f.Errors[cmdline] = err
	return f
}

// Run implements Runner.
func (f *Fake) Run(ctx context.Context, inv Invocation) (Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, inv)
	key := inv.String()
	err, hasErr := f.Errors[key]
	res, hasRes := f.Responses[key]
	handler := f.Handler
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if hasErr {
		return Result{}, err
	}
	if hasRes {
		return res, nil
	}
	if handler != nil {
		return handler(inv)
	}
	return Failure(127, "fake: no response for "+key), nil
}

// Calls returns the invocations seen so far, in order.
func (f *Fake) Calls() []Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Invocation(nil), f.calls...)
}

// CallLines returns Calls rendered as command lines.
func (f *Fake) CallLines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}

var _ Runner = (*Fake)(nil)
