package testutils

import (
	"context"
	"sync"
)

// CallLog records the order in which fakes were invoked.
type CallLog struct {
	mu    sync.Mutex
	calls []string
}

// Record appends name to the log.
func (l *CallLog) Record(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

// Calls returns the recorded names in order.
func (l *CallLog) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.calls))
	copy(out, l.calls)
	return out
}

// FakeDataSource is a data source whose Connect returns Err.
type FakeDataSource struct {
	Err    error
	Log    *CallLog
	Calls  int
	Closed bool
}

// Connect records the call and returns Err.
func (f *FakeDataSource) Connect(_ context.Context) error {
	f.Calls++
	if f.Log != nil {
		f.Log.Record("connect")
	}
	return f.Err
}

// Check returns Err.
func (f *FakeDataSource) Check(_ context.Context) error {
	return f.Err
}

// FakeScanner is a scanner whose Activate returns Err.
type FakeScanner struct {
	Err   error
	Log   *CallLog
	Calls int
}

// Activate records the call and returns Err.
func (f *FakeScanner) Activate(_ context.Context) error {
	f.Calls++
	if f.Log != nil {
		f.Log.Record("activate")
	}
	return f.Err
}

// Check returns Err.
func (f *FakeScanner) Check(_ context.Context) error {
	return f.Err
}

// Close records that the data source was released.
func (f *FakeDataSource) Close() error {
	f.Closed = true
	return nil
}
