// Package script runs Lua validation scripts for field edits.
//
// A script defines a global function that receives the whole candidate
// text of an edit and returns true to accept it:
//
//	function validate(text)
//	  return text:match("^%d*$") ~= nil
//	end
//
// Scripts run in a state with only the base, table, string and math
// libraries. charcount(s) returns the number of characters in s, since
// Lua's # operator counts bytes.
package script

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Defaults for a Validator.
const (
	DefaultFunction = "validate"
	DefaultTimeout  = time.Second
)

var (
	// ErrNoFunction indicates the script does not define the validate function.
	ErrNoFunction = errors.New("script does not define the validate function")

	// ErrClosed indicates the validator was closed.
	ErrClosed = errors.New("validator is closed")
)

// Validator evaluates candidate texts with a Lua function. It is safe for
// concurrent use; calls are serialized.
type Validator struct {
	mu      sync.Mutex
	L       *lua.LState
	fn      string
	timeout time.Duration
	logger  *zap.Logger
	closed  bool
}

// Option configures a Validator.
type Option func(*Validator)

// WithFunction sets the name of the global validate function.
func WithFunction(name string) Option {
	return func(v *Validator) {
		if name != "" {
			v.fn = name
		}
	}
}

// WithTimeout bounds one validation call.
func WithTimeout(d time.Duration) Option {
	return func(v *Validator) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// WithLogger sets the logger used by Accept.
func WithLogger(logger *zap.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// New creates a validator with an empty script.
func New(opts ...Option) *Validator {
	v := &Validator{
		fn:      DefaultFunction,
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetGlobal("charcount", L.NewFunction(charCount))
	v.L = L
	return v
}

// LoadFile runs the script at path and checks that it defines the
// validate function.
func (v *Validator) LoadFile(path string) error {
	return v.load(func() error { return v.L.DoFile(path) })
}

// LoadString runs code and checks that it defines the validate function.
func (v *Validator) LoadString(code string) error {
	return v.load(func() error { return v.L.DoString(code) })
}

func (v *Validator) load(run func() error) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return ErrClosed
	}
	if err := run(); err != nil {
		return fmt.Errorf("loading validation script: %w", err)
	}
	if v.L.GetGlobal(v.fn).Type() != lua.LTFunction {
		return fmt.Errorf("%w: %q", ErrNoFunction, v.fn)
	}
	return nil
}

// Validate calls the validate function with text and reports whether it
// returned a true value.
func (v *Validator) Validate(text string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return false, ErrClosed
	}
	fn := v.L.GetGlobal(v.fn)
	if fn.Type() != lua.LTFunction {
		return false, fmt.Errorf("%w: %q", ErrNoFunction, v.fn)
	}

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	v.L.SetContext(ctx)
	defer v.L.RemoveContext()

	if err := v.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, lua.LString(text)); err != nil {
		return false, fmt.Errorf("running %s: %w", v.fn, err)
	}
	ret := v.L.Get(-1)
	v.L.Pop(1)
	return lua.LVAsBool(ret), nil
}

// Accept is Validate for use as an engine validation callback. Script
// errors reject the edit.
func (v *Validator) Accept(text string) bool {
	ok, err := v.Validate(text)
	if err != nil {
		v.logger.Warn("validation script failed", zap.Error(err))
		return false
	}
	return ok
}

// Close releases the Lua state.
func (v *Validator) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}
	v.closed = true
	v.L.Close()
}

func charCount(L *lua.LState) int {
	L.Push(lua.LNumber(utf8.RuneCountInString(L.CheckString(1))))
	return 1
}
