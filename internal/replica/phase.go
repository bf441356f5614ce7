package replica

// Phase is where a replica stands relative to the shared document.
type Phase int

const (
	// PhaseUnloaded: no notification received yet.
	PhaseUnloaded Phase = iota
	// PhaseSynced: the cache reflects the newest known write.
	PhaseSynced
	// PhaseWriting: a local write is in flight or inside its grace window;
	// inbound notifications are dropped.
	PhaseWriting
)

func (p Phase) String() string {
	switch p {
	case PhaseUnloaded:
		return "UNLOADED"
	case PhaseSynced:
		return "SYNCED"
	case PhaseWriting:
		return "WRITING"
	default:
		return "UNKNOWN"
	}
}
