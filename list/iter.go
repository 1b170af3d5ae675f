package list

import "iter"

// All returns a sequence of the list's payloads from head to tail. Each call produces a fresh
// sequence, bounded by the list's length when iteration starts.
//
// The list must not be structurally modified while a sequence is being consumed. If the sequence
// observes an Append, RemoveFirst or Destroy between two values, it stops early.
func (l *List) All() iter.Seq[int] {
	return l.walk(true)
}

// Backward is All from tail to head
func (l *List) Backward() iter.Seq[int] {
	return l.walk(false)
}

func (l *List) walk(forward bool) iter.Seq[int] {
	return func(yield func(int) bool) {
		if l.checkUsable() != nil || l.destroyed {
			return
		}

		mods := l.mods
		remaining := l.count

		slot := l.tail
		if forward {
			slot = l.head
		}

		for ; slot != noSlot && remaining > 0; remaining-- {
			if !yield(l.valueAt(slot)) {
				return
			}

			if l.destroyed || l.mods != mods {
				return
			}

			if forward {
				slot = l.nodes[slot].next
			} else {
				slot = l.nodes[slot].prev
			}
		}
	}
}
