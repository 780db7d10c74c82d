package frontier

// AdmissionOutcome is the frontier's verdict on an offered URL.
// Neither rejection is an error: the link is simply dropped.
type AdmissionOutcome int

const (
	Admitted AdmissionOutcome = iota
	ScopeRejected
	Duplicate
)

func (o AdmissionOutcome) String() string {
	switch o {
	case Admitted:
		return "admitted"
	case ScopeRejected:
		return "scope_rejected"
	case Duplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}
