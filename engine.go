// Package ndp implements a link-layer neighbor discovery engine: a
// periodic beacon sender, a passive beacon receiver, and a bounded
// table of currently reachable neighbors, all driven over a raw
// broadcast socket on a single network interface.
package ndp

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// DefaultInterface is used whenever Engine is created with an empty
// interface name, matching the original's "leave blank to use ra0".
const DefaultInterface = "ra0"

// MaxInterfaceNameLen is the maximum length of Engine's interface name
// field, including the terminator the C original reserved.
const MaxInterfaceNameLen = 16

// bindFunc is the interface binder's signature; a package-level var so
// tests can substitute a fake without touching a real socket.
type bindFunc func(ifname string) (t transport, addr Address, mtu int, code ErrorCode, err error)

// Engine owns the raw socket, the neighbor table, and the two
// background activities that keep it current. The zero value is not
// usable; construct with New.
type Engine struct {
	mu    sync.Mutex
	table Table

	ifname  string
	addr    Address
	ifIndex int
	mtu     int
	err     ErrorCode

	active *atomic.Bool
	stress *atomic.Bool

	transport transport
	clock     clock.Clock
	log       zerolog.Logger
	bind      bindFunc

	senderDone   chan struct{}
	receiverDone chan struct{}
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithClock overrides the clock used by the sender/receiver tick loops.
// Production code never needs this; tests use it to inject a
// clock.Mock and drive scenarios tick-by-tick without real sleeps.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger overrides the engine's logger. The default is a disabled
// logger, matching zerolog's convention for libraries that should be
// silent until a caller opts in.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// withBind overrides the interface binder. Unexported: only the test
// suite needs to avoid touching a real raw socket.
func withBind(b bindFunc) Option {
	return func(e *Engine) { e.bind = b }
}

// New allocates an Engine for the named interface. An empty name
// selects DefaultInterface. This does not yet touch the network — call
// Create to run the binder.
func New(ifname string, opts ...Option) *Engine {
	if ifname == "" {
		ifname = DefaultInterface
	}

	e := &Engine{
		ifname: ifname,
		active: atomic.NewBool(false),
		stress: atomic.NewBool(false),
		clock:  clock.New(),
		log:    zerolog.Nop(),
		bind:   bind,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Create runs the interface binder (spec.md §4.1). On success Error()
// is ErrNone and the engine is ready for Start; on failure Error()
// reports which step failed and Start remains a no-op until the engine
// is recreated.
func (e *Engine) Create() {
	e.active.Store(false)
	e.stress.Store(false)
	e.table.clear()

	t, addr, mtu, code, err := e.bind(e.ifname)
	if code != ErrNone {
		e.err = code
		e.log.Error().Err(err).Str("interface", e.ifname).Str("reason", code.String()).Msg("ndp: failed to bind interface")
		return
	}

	e.transport = t
	e.addr = addr
	e.mtu = mtu
	e.err = ErrNone

	e.log.Info().Str("interface", e.ifname).Str("addr", addr.String()).Int("mtu", mtu).Msg("ndp: interface bound")
}

// Start launches the sender and receiver activities. It is a no-op
// unless Error() is ErrNone and the engine is not already active.
func (e *Engine) Start() {
	if e.err != ErrNone || e.active.Load() {
		return
	}

	e.active.Store(true)
	e.senderDone = make(chan struct{})
	e.receiverDone = make(chan struct{})

	go e.sendLoop()
	go e.recvLoop()

	e.log.Info().Str("interface", e.ifname).Msg("ndp: engine started")
}

// Stop signals both activities to exit, waits for them, and clears the
// table. It is a no-op unless the engine is active.
func (e *Engine) Stop() {
	if !e.active.Load() {
		return
	}

	e.active.Store(false)
	<-e.senderDone
	<-e.receiverDone

	e.mu.Lock()
	e.table.clear()
	e.mu.Unlock()

	e.log.Info().Str("interface", e.ifname).Msg("ndp: engine stopped")
}

// Destroy stops the engine (if needed) and releases the socket.
func (e *Engine) Destroy() {
	if e.transport == nil {
		return
	}

	e.Stop()

	if err := e.transport.close(); err != nil {
		e.log.Warn().Err(err).Msg("ndp: error closing socket")
	}
	e.transport = nil
}

// Lock acquires the table mutex. It is a no-op when the engine is not
// active, which lets a UI inspect the (empty) table before Start
// without taking the mutex.
func (e *Engine) Lock() {
	if e.active.Load() {
		e.mu.Lock()
	}
}

// Unlock releases the table mutex acquired by Lock.
func (e *Engine) Unlock() {
	if e.active.Load() {
		e.mu.Unlock()
	}
}

// TableView exposes the internal table for direct reads. The caller
// must hold the lock (Lock/Unlock) for the duration of any access.
func (e *Engine) TableView() *Table {
	return &e.table
}

// Neighbors returns a locked snapshot of every occupied table slot.
// It is a convenience wrapper around Lock/TableView/Unlock for callers
// that don't need to hold the lock across anything else.
func (e *Engine) Neighbors() []Neighbor {
	e.Lock()
	defer e.Unlock()
	return e.table.Snapshot()
}

// SetStress toggles stress mode. Visibility to the sender activity is
// eventual, per spec.md §9 — no ordering stronger than a plain atomic
// store is required.
func (e *Engine) SetStress(v bool) {
	e.stress.Store(v)
}

// Stress reports whether stress mode is currently enabled.
func (e *Engine) Stress() bool {
	return e.stress.Load()
}

// Active reports whether the engine's activities are currently running.
func (e *Engine) Active() bool {
	return e.active.Load()
}

// Error returns the engine's current error code.
func (e *Engine) Error() ErrorCode {
	return e.err
}

// ErrorString renders Error() as a human-readable string, empty when
// there is no error.
func (e *Engine) ErrorString() string {
	return e.err.String()
}

// InterfaceName returns the interface this engine was created for.
func (e *Engine) InterfaceName() string {
	return e.ifname
}

// LocalAddr returns the interface's hardware address, valid once
// Create has succeeded.
func (e *Engine) LocalAddr() Address {
	return e.addr
}

// MTU returns the interface's maximum transmission unit, valid once
// Create has succeeded.
func (e *Engine) MTU() int {
	return e.mtu
}

// Status is a read-only snapshot of the engine's fields that don't need
// the table lock, plus the current neighbor count (which does).
type Status struct {
	Interface string
	Addr      Address
	MTU       int
	Active    bool
	Stress    bool
	Error     ErrorCode
	Neighbors int
}

// Status returns a snapshot suitable for a UI status line. Only the
// neighbor count requires taking the lock.
func (e *Engine) Status() Status {
	return Status{
		Interface: e.ifname,
		Addr:      e.addr,
		MTU:       e.mtu,
		Active:    e.Active(),
		Stress:    e.Stress(),
		Error:     e.err,
		Neighbors: len(e.Neighbors()),
	}
}

// elapsedTicker drives the poll-sleep-accumulate pattern spec.md §4.2
// and §4.3 describe: sleep a short tick, accumulate virtual elapsed
// time, and report when the caller's interval has passed. Using the
// engine's clock instead of time.Sleep is what lets tests advance it
// deterministically.
type elapsedTicker struct {
	clk      clock.Clock
	tick     time.Duration
	interval time.Duration
	elapsed  time.Duration
}

func newElapsedTicker(clk clock.Clock, tick, interval time.Duration) *elapsedTicker {
	return &elapsedTicker{clk: clk, tick: tick, interval: interval}
}

// wait sleeps one tick and reports whether interval has now elapsed,
// resetting the accumulator when it has.
func (t *elapsedTicker) wait() bool {
	t.clk.Sleep(t.tick)
	t.elapsed += t.tick
	if t.elapsed >= t.interval {
		t.elapsed = 0
		return true
	}
	return false
}
