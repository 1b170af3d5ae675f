package list

import (
	"strconv"
	"strings"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/linkage/memutils"
)

// AddStatistics adds the list's header and every node's storage to stats
func (l *List) AddStatistics(stats *memutils.Statistics) {
	if l.checkUsable() != nil || l.destroyed {
		return
	}

	stats.AddAllocation(l.header.Len(), l.header.Reserved())
	for slot := l.head; slot != noSlot; slot = l.nodes[slot].next {
		payload := l.nodes[slot].payload
		stats.AddAllocation(payload.Len(), payload.Reserved())
	}
}

// PrintJSON writes the list's name, count and payloads to writer as a JSON object
func (l *List) PrintJSON(writer *jwriter.Writer) {
	obj := writer.Object()
	defer obj.End()

	if l.checkUsable() != nil {
		return
	}

	obj.Name("Name").String(l.name)
	obj.Name("Destroyed").Bool(l.destroyed)
	if l.destroyed {
		return
	}

	obj.Name("Count").Int(l.count)

	values := obj.Name("Values").Array()
	for value := range l.All() {
		values.Int(value)
	}
	values.End()
}

// String renders the list as "List (count: N): v1 v2 ..."
func (l *List) String() string {
	if l.checkUsable() != nil {
		return "List (invalid)"
	}

	if l.destroyed {
		return "List (destroyed)"
	}

	var sb strings.Builder
	sb.WriteString("List (count: ")
	sb.WriteString(strconv.Itoa(l.count))
	sb.WriteString("):")

	for value := range l.All() {
		sb.WriteByte(' ')
		sb.WriteString(strconv.Itoa(value))
	}

	return sb.String()
}
