package phothttp

import (
	"github.com/snksoft/crc"
)

var crcTable = crc.NewTable(crc.CRC64ECMA)

// memo is a fixed-capacity FIFO cache of encoded replies keyed by the
// CRC64 of the request bodies that produced them.  It is not thread safe;
// the HTTPPhotometer serializes access.
type memo struct {
	capacity int
	items    map[uint64][]byte
	order    []uint64
}

func newMemo(capacity int) *memo {
	return &memo{capacity: capacity, items: make(map[uint64][]byte)}
}

func (m *memo) get(key uint64) ([]byte, bool) {
	v, ok := m.items[key]
	return v, ok
}

func (m *memo) put(key uint64, reply []byte) {
	if m.capacity < 1 {
		return
	}
	if _, ok := m.items[key]; ok {
		return
	}
	if len(m.order) == m.capacity {
		delete(m.items, m.order[0])
		m.order = m.order[1:]
	}
	m.items[key] = reply
	m.order = append(m.order, key)
}
