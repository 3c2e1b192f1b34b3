package manager

// errorLog is a bounded FIFO of recovery messages. The manager's mutex
// guards it.
type errorLog struct {
	entries []string
	start   int
	size    int
}

func newErrorLog(capacity int) *errorLog {
	return &errorLog{entries: make([]string, capacity)}
}

// add appends msg, evicting the oldest entry when full.
func (l *errorLog) add(msg string) {
	if l.size < len(l.entries) {
		l.entries[(l.start+l.size)%len(l.entries)] = msg
		l.size++
		return
	}
	l.entries[l.start] = msg
	l.start = (l.start + 1) % len(l.entries)
}

// snapshot returns the entries oldest first.
func (l *errorLog) snapshot() []string {
	out := make([]string, l.size)
	for i := range out {
		out[i] = l.entries[(l.start+i)%len(l.entries)]
	}
	return out
}

func (l *errorLog) len() int { return l.size }
