package ndp

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport is an in-memory stand-in for linuxTransport: sendFrame
// appends to an outbox, recvFrame drains a caller-fed inbox, both
// guarded by a mutex since the sender and receiver activities run on
// separate goroutines.
type fakeTransport struct {
	mu     sync.Mutex
	sent   [][]byte
	inbox  [][]byte
	closed bool
}

func (f *fakeTransport) sendFrame(frame []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, append([]byte(nil), frame...))
	return nil
}

func (f *fakeTransport) recvFrame(buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.inbox) == 0 {
		return 0, nil
	}
	next := f.inbox[0]
	f.inbox = f.inbox[1:]
	return copy(buf, next), nil
}

func (f *fakeTransport) close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) push(b beacon) {
	frame, err := b.marshal()
	if err != nil {
		panic(err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inbox = append(f.inbox, frame)
}

func (f *fakeTransport) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// newTestEngine wires an Engine to a fakeTransport and a clock.Mock via
// the unexported withBind option, bypassing the real raw-socket binder
// entirely.
func newTestEngine(t *testing.T) (*Engine, *fakeTransport, *clock.Mock) {
	t.Helper()

	ft := &fakeTransport{}
	mc := clock.NewMock()
	local := Address{0xAA, 0xBB, 0xCC, 0x00, 0x00, 0x01}

	e := New("fake0", WithClock(mc), withBind(func(string) (transport, Address, int, ErrorCode, error) {
		return ft, local, 1500, ErrNone, nil
	}))

	e.Create()
	require.Equal(t, ErrNone, e.Error())

	return e, ft, mc
}

// stepTicks advances the mock clock one tick at a time, yielding the
// scheduler between steps so the sender/receiver goroutines' pending
// Sleep calls are registered before the next Add.
func stepTicks(mc *clock.Mock, tick time.Duration, n int) {
	for i := 0; i < n; i++ {
		runtime.Gosched()
		mc.Add(tick)
	}
}

func ticksFor(d, tick time.Duration) int {
	return int(d / tick)
}

func TestEngineEmptyStartSendsTenBeaconsByThirtySeconds(t *testing.T) {
	e, ft, mc := newTestEngine(t)
	e.Start()
	defer e.Destroy()

	stepTicks(mc, senderTick, ticksFor(30*time.Second, senderTick))

	assert.Equal(t, 10, ft.sentCount())
}

func TestEngineSteadyPeerIsNotEvicted(t *testing.T) {
	e, ft, mc := newTestEngine(t)
	e.Start()
	defer e.Destroy()

	peer := Address{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}

	for i := 0; i < 7; i++ {
		ft.push(beacon{target: Broadcast, source: peer})
		stepTicks(mc, receiverTick, ticksFor(4*time.Second, receiverTick))
	}

	neighbors := e.Neighbors()
	require.Len(t, neighbors, 1)
	assert.Equal(t, peer, neighbors[0].Addr)
}

// A freshly-inserted neighbor's first aging pass only resets its
// Arrived-from-insertion flag (Recorded -1 -> 0); only the following
// passes increment Recorded, so eviction takes MaxRecorded+1 = 7 aging
// passes (~35s virtual time at a 5s aging interval), not 6 (~30s). See
// DESIGN.md's "Aging increment from Recorded=-1" entry.
func TestEngineSilentPeerEvictedAfterSevenAgingPasses(t *testing.T) {
	e, ft, mc := newTestEngine(t)
	e.Start()
	defer e.Destroy()

	peer := Address{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	ft.push(beacon{target: Broadcast, source: peer})

	stepTicks(mc, receiverTick, ticksFor(1*time.Second, receiverTick))
	require.Len(t, e.Neighbors(), 1)

	// ~30s: a pass runs every 556 ticks of 9ms (~5.004s), so only five
	// aging passes have run; Recorded has reached 4, not evicted.
	stepTicks(mc, receiverTick, ticksFor(29*time.Second, receiverTick))
	require.Len(t, e.Neighbors(), 1)

	// The 6th (~30.02s) and 7th (~35.03s) passes push Recorded to 5 and
	// then 6, which evicts.
	stepTicks(mc, receiverTick, ticksFor(6*time.Second, receiverTick))
	assert.Empty(t, e.Neighbors())
}

func TestEngineCapacityOverflowDropsThirtyThirdNeighbor(t *testing.T) {
	e, ft, mc := newTestEngine(t)
	e.Start()
	defer e.Destroy()

	for i := 0; i < TableSize+1; i++ {
		addr := Address{0, 0, 0, 0, 0, byte(i)}
		ft.push(beacon{target: Broadcast, source: addr})
	}

	stepTicks(mc, receiverTick, ticksFor(2*time.Second, receiverTick))

	assert.Len(t, e.Neighbors(), TableSize)
}

func TestEngineStressModeRandomizesSourceOctets(t *testing.T) {
	e, ft, mc := newTestEngine(t)
	e.Start()
	e.SetStress(true)
	defer e.Destroy()

	stepTicks(mc, senderTick, ticksFor(1*time.Second, senderTick))

	assert.Greater(t, ft.sentCount(), 50)

	local := e.LocalAddr()
	sources := map[Address]bool{}
	for _, frame := range ft.sent {
		b, ok, err := unmarshalBeacon(frame)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, local[0], b.source[0])
		assert.Equal(t, local[1], b.source[1])
		assert.Equal(t, local[2], b.source[2])
		sources[b.source] = true
	}
	assert.Greater(t, len(sources), 1)
}

func TestEngineBindFailureReportsErrGetIfIndex(t *testing.T) {
	e := New("fake0", withBind(func(string) (transport, Address, int, ErrorCode, error) {
		return nil, Address{}, 0, ErrGetIfIndex, errors.New("no such interface")
	}))

	e.Create()

	assert.Equal(t, ErrGetIfIndex, e.Error())
	assert.Equal(t, "Failed to retrieve the interface index", e.ErrorString())
	assert.False(t, e.Active())
}

func TestEngineStartIsNoOpAfterBindFailure(t *testing.T) {
	e := New("fake0", withBind(func(string) (transport, Address, int, ErrorCode, error) {
		return nil, Address{}, 0, ErrOpenSocket, fmt.Errorf("denied")
	}))

	e.Create()
	e.Start()

	assert.False(t, e.Active())
}

func TestEngineDefaultInterfaceName(t *testing.T) {
	e := New("")
	assert.Equal(t, DefaultInterface, e.InterfaceName())
}
