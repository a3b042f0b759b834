package ndp

import (
	"math/rand"
	"time"
)

const (
	senderTick     = 10 * time.Millisecond
	senderInterval = 3 * time.Second
)

// sendLoop is the sender activity from spec.md §4.2: in normal mode it
// emits one beacon every ~3s; in stress mode it emits one beacon per
// tick with randomized source octets 3-5. It exits once Active() goes
// false, within one tick.
func (e *Engine) sendLoop() {
	defer close(e.senderDone)

	ticker := newElapsedTicker(e.clock, senderTick, senderInterval)

	for e.active.Load() {
		if e.stress.Load() {
			e.sendStressFrame()
			e.clock.Sleep(senderTick)
			continue
		}

		if ticker.wait() {
			e.sendBeacon(e.addr)
		}
	}
}

// sendBeacon marshals and best-effort transmits a single beacon with
// the given source address. Send failures are tolerated silently per
// spec.md §7 — only logged at debug level for diagnosis.
func (e *Engine) sendBeacon(source Address) {
	b := beacon{target: Broadcast, source: source}

	frame, err := b.marshal()
	if err != nil {
		e.log.Debug().Err(err).Msg("ndp: failed to marshal beacon")
		return
	}

	if err := e.transport.sendFrame(frame); err != nil {
		e.log.Debug().Err(err).Msg("ndp: failed to send beacon")
	}
}

// sendStressFrame emits one beacon whose source octets 3-5 are
// independently randomized. The spoofed address is a copy, so e.addr
// itself is never mutated and nothing needs restoring, unlike the
// original's in-place spoof-then-restore on a single shared beacon.
func (e *Engine) sendStressFrame() {
	spoofed := e.addr
	spoofed[3] = byte(rand.Intn(256))
	spoofed[4] = byte(rand.Intn(256))
	spoofed[5] = byte(rand.Intn(256))

	e.sendBeacon(spoofed)
}
