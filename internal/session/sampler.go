package session

// Sampler reads analysis frames from the active session. Within one tick
// each kind of frame is filled at most once and every caller sees the same
// snapshot. When no session is active both pulls return nil.
//
// A Sampler belongs to a single render loop and is not safe for concurrent
// use; the Controller it reads from is.
type Sampler struct {
	c    *Controller
	tick uint64

	freq     []byte
	freqTick uint64
	freqGen  uint64
	freqOK   bool

	td     []byte
	tdTick uint64
	tdGen  uint64
	tdOK   bool
}

// Sampler returns a new Sampler bound to c.
func (c *Controller) Sampler() *Sampler {
	return &Sampler{c: c}
}

// Tick starts a new render frame; the next pulls refresh.
func (s *Sampler) Tick() {
	s.tick++
}

// Len is the current frame length, 0 when idle.
func (s *Sampler) Len() int {
	return s.c.FrameLen()
}

// SampleFrequency returns N bytes of smoothed dB-scaled magnitudes, or nil.
func (s *Sampler) SampleFrequency() []byte {
	c := s.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active || c.node == nil || c.n <= 0 {
		return nil
	}
	if s.freqOK && s.freqTick == s.tick && s.freqGen == c.gen {
		return s.freq
	}
	if len(s.freq) != c.n {
		s.freq = make([]byte, c.n)
	}
	c.node.ByteFrequencyData(s.freq)
	s.freqTick, s.freqGen, s.freqOK = s.tick, c.gen, true
	return s.freq
}

// SampleTimeDomain returns N bytes of waveform samples (128 is silence),
// or nil.
func (s *Sampler) SampleTimeDomain() []byte {
	c := s.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active || c.node == nil || c.n <= 0 {
		return nil
	}
	if s.tdOK && s.tdTick == s.tick && s.tdGen == c.gen {
		return s.td
	}
	if len(s.td) != c.n {
		s.td = make([]byte, c.n)
	}
	c.node.ByteTimeDomainData(s.td)
	s.tdTick, s.tdGen, s.tdOK = s.tick, c.gen, true
	return s.td
}
