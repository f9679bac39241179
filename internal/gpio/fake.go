package gpio

// FakeRelay is a test double that records every Set call.
type FakeRelay struct {
	// On is the current logical state.
	On bool

	// Sets records the value of every successful Set call.
	Sets []bool

	// SetError, if set, will be returned by Set.
	SetError error

	// ReadError, if set, will be returned by IsOn.
	ReadError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeRelay creates a de-energized FakeRelay.
func NewFakeRelay() *FakeRelay {
	return &FakeRelay{}
}

// IsOn returns the current state.
func (f *FakeRelay) IsOn() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}
	return f.On, nil
}

// Set records and applies the new state.
func (f *FakeRelay) Set(on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.On = on
	f.Sets = append(f.Sets, on)
	return nil
}

// Close de-energizes and marks the relay as closed.
func (f *FakeRelay) Close() error {
	f.On = false
	f.Closed = true
	return nil
}

// Reset clears recorded calls.
func (f *FakeRelay) Reset() {
	f.Sets = nil
	f.Closed = false
	f.SetError = nil
	f.ReadError = nil
}
