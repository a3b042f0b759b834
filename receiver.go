package ndp

import "time"

const (
	receiverTick  = 9 * time.Millisecond
	agingInterval = 5 * time.Second

	// maxFrameLen is large enough for any beacon frame this engine
	// sends or expects to receive; anything longer is truncated, which
	// is harmless since only the first BeaconLen bytes are inspected.
	maxFrameLen = 1514
)

// recvLoop is the receiver activity from spec.md §4.3: a non-blocking
// poll for one frame per tick, beacon ingestion under lock, and a
// periodic aging pass over the table. It exits once Active() goes
// false, within one tick.
func (e *Engine) recvLoop() {
	defer close(e.receiverDone)

	ticker := newElapsedTicker(e.clock, receiverTick, agingInterval)
	buf := make([]byte, maxFrameLen)

	for e.active.Load() {
		e.pollOnce(buf)

		if ticker.wait() {
			e.mu.Lock()
			e.table.age()
			e.mu.Unlock()
		}
	}
}

// pollOnce performs a single non-blocking receive and, if the frame is
// a beacon, ingests it under lock. Anything else - no data, a read
// error, or a non-beacon EtherType - is ignored, per spec.md §7.
func (e *Engine) pollOnce(buf []byte) {
	n, err := e.transport.recvFrame(buf)
	if err != nil {
		e.log.Debug().Err(err).Msg("ndp: receive error")
		return
	}
	if n == 0 {
		return
	}

	b, ok, err := unmarshalBeacon(buf[:n])
	if err != nil {
		e.log.Debug().Err(err).Msg("ndp: malformed frame")
		return
	}
	if !ok {
		return
	}

	e.mu.Lock()
	e.table.receiveBeacon(b.source)
	e.mu.Unlock()
}
