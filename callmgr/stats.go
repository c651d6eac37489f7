package callmgr

// Stats accumulates ambient execution telemetry for one message, read by
// the executor after Apply returns. None of these counters affect
// consensus; they exist purely for operational visibility, the same role
// deepmind's call-index bookkeeping plays for the teacher's tracer.
type Stats struct {
	NumActorsCreated uint64
	NumSyscalls      uint64
	NumSends         uint64
}

func (s *Stats) recordSend()        { s.NumSends++ }
func (s *Stats) recordActorCreated() { s.NumActorsCreated++ }
func (s *Stats) recordSyscall()     { s.NumSyscalls++ }
