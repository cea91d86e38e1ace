package editor

// Phase is the stage of the most recent execution
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// View is the presentable outcome of the latest run.
//
//	Idle        nothing submitted yet
//	Submitting  request Seq is in flight; Output still holds the previous text
//	Succeeded   Output is output+compile_message, HadDiagnostic set when the
//	            compile message was non-empty
//	Failed      the request never produced a result; Reason says why
type View struct {
	Phase         Phase
	Seq           uint64
	Output        string
	HadDiagnostic bool
	Reason        string
}

// Loading reports whether a request is in flight
func (v View) Loading() bool {
	return v.Phase == PhaseSubmitting
}

// IsError reports whether the service returned a diagnostic
func (v View) IsError() bool {
	return v.Phase == PhaseSucceeded && v.HadDiagnostic
}

// Failed reports whether the request could not be completed
func (v View) Failed() bool {
	return v.Phase == PhaseFailed
}

// Precedes reports whether v is an older transition than w. Within one run,
// Submitting comes before the outcome.
func (v View) Precedes(w View) bool {
	if v.Seq != w.Seq {
		return v.Seq < w.Seq
	}
	return v.Phase == PhaseSubmitting && w.Phase != PhaseSubmitting
}
