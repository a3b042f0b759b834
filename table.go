package ndp

// TableSize is the fixed capacity of the neighbor table.
const TableSize = 32

// Table is a fixed-capacity, fixed-slot array of optional neighbor
// records. Every method here assumes the caller already holds the
// engine's lock (see Engine.Lock / Engine.Unlock) — Table itself does
// no synchronization of its own, exactly like the teacher's
// IntermediateBuffer pool, which is only ever touched from inside a
// single filter critical section.
type Table struct {
	slots [TableSize]*Neighbor
}

// Snapshot returns a copy of the occupied neighbor records, in no
// particular order. The caller must hold the lock.
func (t *Table) Snapshot() []Neighbor {
	out := make([]Neighbor, 0, TableSize)
	for _, n := range t.slots {
		if n != nil {
			out = append(out, *n)
		}
	}
	return out
}

// Len reports the number of occupied slots. The caller must hold the lock.
func (t *Table) Len() int {
	n := 0
	for _, s := range t.slots {
		if s != nil {
			n++
		}
	}
	return n
}

// clear empties every slot, used by Engine.Stop.
func (t *Table) clear() {
	for i := range t.slots {
		t.slots[i] = nil
	}
}

// find returns the occupied slot holding addr, or nil.
func (t *Table) find(addr Address) *Neighbor {
	for _, n := range t.slots {
		if n != nil && n.Addr == addr {
			return n
		}
	}
	return nil
}

// receiveBeacon implements spec.md §4.3's beacon-ingestion rule: mark an
// existing neighbor fresh, or insert a new one into the lowest-indexed
// empty slot. A beacon observed while the table is full is dropped
// silently.
func (t *Table) receiveBeacon(source Address) {
	free := -1
	for i, n := range t.slots {
		if n == nil {
			if free == -1 {
				free = i
			}
			continue
		}
		if n.Addr == source {
			n.Arrived = true
			return
		}
	}

	if free == -1 {
		return
	}

	entry := freshlyInserted(source)
	t.slots[free] = &entry
}

// age implements the aging pass of spec.md §4.3: a neighbor that arrived
// this window resets to the "seen" state; one that didn't has its
// Recorded counter advanced, and is evicted once that counter reaches
// MaxRecorded.
func (t *Table) age() {
	for i, n := range t.slots {
		if n == nil {
			continue
		}

		if !n.Arrived {
			n.Recorded++
			if n.Recorded >= MaxRecorded {
				t.slots[i] = nil
			}
			continue
		}

		n.Arrived = false
		n.Recorded = 0
	}
}
