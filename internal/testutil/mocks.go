package testutil

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// MockClock is a controllable clock. It satisfies the Clock interfaces of the
// throttle and stage packages.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockClock creates a MockClock at start, or at the current time if start is zero.
func NewMockClock(start time.Time) *MockClock {
	if start.IsZero() {
		start = time.Now()
	}
	return &MockClock{now: start}
}

// Now returns the current mock time.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the mock clock forward by the given duration.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// Set sets the mock clock to a specific time.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// MockWriter captures report output one Write call at a time. Manager.Report
// writes one line per pipeline, so each entry is usually one report line.
type MockWriter struct {
	mu     sync.Mutex
	writes []string
	failAt int
	err    error
}

// NewMockWriter creates an empty MockWriter.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// FailOn makes the nth Write (1-based) return err instead of recording p.
// A nil err fails with a generic write error.
func (mw *MockWriter) FailOn(n int, err error) {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	if err == nil {
		err = errors.New("simulated write failure")
	}
	mw.failAt, mw.err = n, err
}

func (mw *MockWriter) Write(p []byte) (int, error) {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	if mw.failAt > 0 && len(mw.writes)+1 == mw.failAt {
		mw.failAt = 0
		return 0, mw.err
	}
	mw.writes = append(mw.writes, string(p))
	return len(p), nil
}

// Writes returns the recorded Write payloads in order.
func (mw *MockWriter) Writes() []string {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	return append([]string(nil), mw.writes...)
}

// String returns everything written so far.
func (mw *MockWriter) String() string {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	return strings.Join(mw.writes, "")
}
