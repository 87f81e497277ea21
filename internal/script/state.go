package script

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/xrope/internal/logging"
	"github.com/dshills/xrope/internal/rope"
)

// DefaultTimeout bounds a single DoString or DoFile call.
const DefaultTimeout = 5 * time.Second

// State wraps a gopher-lua state with the rope module installed.
//
// gopher-lua states are not goroutine-safe; the mutex serializes every
// entry point, so a State may be shared but scripts never run in parallel.
type State struct {
	L *lua.LState

	mu sync.Mutex

	out       io.Writer
	logger    *log.Logger
	timeout   time.Duration
	blockSize int

	handles map[*handle]struct{}
	closed  bool
}

// Option configures a State.
type Option func(*State)

// WithOutput sets where print writes. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(s *State) {
		s.out = w
	}
}

// WithLogger sets the logger used for host diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(s *State) {
		s.logger = l
	}
}

// WithTimeout bounds each run. Zero or negative disables the bound; the
// caller's context still applies.
func WithTimeout(d time.Duration) Option {
	return func(s *State) {
		s.timeout = d
	}
}

// WithBlockSize sets the leaf size used by rope.load.
func WithBlockSize(n int) Option {
	return func(s *State) {
		s.blockSize = n
	}
}

// New creates a sandboxed state with the rope module installed.
func New(opts ...Option) (*State, error) {
	s := &State{
		out:       os.Stdout,
		timeout:   DefaultTimeout,
		blockSize: rope.DefaultBlockSize,
		handles:   make(map[*handle]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)
	s.L.SetGlobal("print", s.L.NewFunction(s.print))
	if err := s.registerRopeModule(); err != nil {
		s.L.Close()
		return nil, err
	}
	return s, nil
}

// openSafeLibraries opens the base, table, string and math libraries and
// removes the loaders that would read code from disk or strings.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// DoString runs code.
func (s *State) DoString(ctx context.Context, code string) error {
	return s.run(ctx, func() error {
		return s.L.DoString(code)
	})
}

// DoFile runs the script at path.
func (s *State) DoFile(ctx context.Context, path string) error {
	return s.run(ctx, func() error {
		return s.L.DoFile(path)
	})
}

func (s *State) run(ctx context.Context, fn func() error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("script: panic: %v", r)
		}
	}()

	if err := fn(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Mark(errors.Wrap(ctxErr, "script: interrupted"), ErrInterrupted)
		}
		return errors.Wrap(err, "script")
	}
	return nil
}

// print writes its arguments to the state's output, tab separated.
func (s *State) print(L *lua.LState) int {
	top := L.GetTop()
	parts := make([]string, top)
	for i := 1; i <= top; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	fmt.Fprintln(s.out, strings.Join(parts, "\t"))
	return 0
}

// GetGlobal returns a global variable value.
func (s *State) GetGlobal(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// Live returns the number of rope handles the scripts hold.
func (s *State) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// Close releases every handle still held by scripts and closes the Lua
// state. It is safe to call more than once.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	if n := len(s.handles); n > 0 {
		s.logger.Warn("releasing rope handles left open by script", logging.FieldHandles, n)
		for h := range s.handles {
			h.release()
		}
		clear(s.handles)
	}
	s.L.Close()
	s.closed = true
	return nil
}
