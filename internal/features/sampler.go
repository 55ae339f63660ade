// Package features extracts animation drivers from analysis frames: band
// energies over the frequency magnitudes and exponential smoothing of the
// per-frame values.
package features

// Sampler yields the most recent analysis frame. Both methods return nil
// when no session is active. Returned slices are owned by the sampler and
// are only valid until the next tick; no queuing and no history.
type Sampler interface {
	SampleFrequency() []byte
	SampleTimeDomain() []byte
}

// Idle is a Sampler with no active session.
type Idle struct{}

func (Idle) SampleFrequency() []byte  { return nil }
func (Idle) SampleTimeDomain() []byte { return nil }

// Static is a Sampler that always returns the same frame. Useful for tests
// and for previews.
type Static struct {
	Frequency  []byte
	TimeDomain []byte
}

func (s Static) SampleFrequency() []byte  { return s.Frequency }
func (s Static) SampleTimeDomain() []byte { return s.TimeDomain }
