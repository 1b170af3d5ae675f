package list

import (
	"encoding/binary"

	"github.com/vkngwrapper/linkage/memory"
)

const noSlot int = -1

// node is one arena slot. A slot is live while payload is non-nil; a free slot keeps its
// generation so that stale NodeRefs to it can be detected.
type node struct {
	next       int
	prev       int
	generation uint32
	payload    *memory.Buffer
}

func (l *List) valueAt(slot int) int {
	return int(int64(binary.LittleEndian.Uint64(l.nodes[slot].payload.Bytes())))
}

func (l *List) claimSlot(payload *memory.Buffer) int {
	var slot int
	if len(l.freeSlots) > 0 {
		slot = l.freeSlots[len(l.freeSlots)-1]
		l.freeSlots = l.freeSlots[:len(l.freeSlots)-1]
	} else {
		slot = len(l.nodes)
		l.nodes = append(l.nodes, node{generation: 1})
	}

	n := &l.nodes[slot]
	n.next = noSlot
	n.prev = noSlot
	n.payload = payload

	return slot
}

func (l *List) freeSlot(slot int) {
	n := &l.nodes[slot]
	n.payload = nil
	n.next = noSlot
	n.prev = noSlot

	n.generation++
	if n.generation == 0 {
		n.generation = 1
	}

	l.freeSlots = append(l.freeSlots, slot)
}

func (l *List) pushNode(slot int) {
	if l.count == 0 {
		l.head = slot
		l.tail = slot
		l.count = 1
	} else {
		l.nodes[slot].prev = l.tail
		l.nodes[l.tail].next = slot

		l.tail = slot
		l.count++
	}

	l.mods++
	l.syncHeader()
}

func (l *List) removeNode(slot int) {
	prev := l.nodes[slot].prev
	next := l.nodes[slot].next

	if prev != noSlot {
		l.nodes[prev].next = next
	} else {
		l.head = next
	}

	if next != noSlot {
		l.nodes[next].prev = prev
	} else {
		l.tail = prev
	}

	l.nodes[slot].next = noSlot
	l.nodes[slot].prev = noSlot

	l.count--
	l.mods++
	l.syncHeader()
}

// syncHeader mirrors head, tail and count into the list's managed header buffer
func (l *List) syncHeader() {
	data := l.header.Bytes()
	binary.LittleEndian.PutUint64(data[0:8], uint64(int64(l.head)))
	binary.LittleEndian.PutUint64(data[8:16], uint64(int64(l.tail)))
	binary.LittleEndian.PutUint64(data[16:24], uint64(int64(l.count)))
}

func (l *List) headerFields() (head, tail, count int) {
	data := l.header.Bytes()
	head = int(int64(binary.LittleEndian.Uint64(data[0:8])))
	tail = int(int64(binary.LittleEndian.Uint64(data[8:16])))
	count = int(int64(binary.LittleEndian.Uint64(data[16:24])))
	return head, tail, count
}
