package types

import "fmt"

// Phase is the lifecycle position of a draft. Phases only move forward.
type Phase uint8

const (
	PhaseDraft Phase = iota
	PhasePriced
	PhaseFrozen
	PhasePosting
	PhasePosted
	PhasePostFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseDraft:
		return "draft"
	case PhasePriced:
		return "priced"
	case PhaseFrozen:
		return "frozen"
	case PhasePosting:
		return "posting"
	case PhasePosted:
		return "posted"
	case PhasePostFailed:
		return "post_failed"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// PhaseOf derives the storage phase of a template.
func PhaseOf(t *ListingTemplate) Phase {
	switch {
	case t.Frozen():
		return PhaseFrozen
	case t.PaymentAddress() != nil:
		return PhasePriced
	default:
		return PhaseDraft
	}
}

// CanAdvance reports whether from -> to is a legal transition. A finished post
// may be posted again; it reuses the frozen hash and never returns to an
// editable phase.
func CanAdvance(from, to Phase) bool {
	switch from {
	case PhaseDraft:
		return to == PhasePriced || to == PhaseFrozen
	case PhasePriced:
		return to == PhaseFrozen
	case PhaseFrozen:
		return to == PhasePosting
	case PhasePosting:
		return to == PhasePosted || to == PhasePostFailed
	case PhasePosted, PhasePostFailed:
		return to == PhasePosting
	}
	return false
}
