// File: internal/services/soapnote/normalize.go
package soapnote

import "github.com/iyunix/mediscribe/internal/domain"

// Plan list caps for the chat UI.
const (
	MaxInvestigations  = 3
	MaxMedications     = 3
	MaxLifestyleAdvice = 3
	MaxReferrals       = 1
	MaxMonitoring      = 3
)

// NormalizeNote returns a copy of the note with every plan list cut to its
// cap. Order is kept; missing lists become empty. Other fields are unchanged.
func NormalizeNote(note domain.SoapNote) domain.SoapNote {
	out := note
	out.Plan = domain.PlanDetail{
		Investigations:  take(note.Plan.Investigations, MaxInvestigations),
		Medications:     take(note.Plan.Medications, MaxMedications),
		LifestyleAdvice: take(note.Plan.LifestyleAdvice, MaxLifestyleAdvice),
		Referrals:       take(note.Plan.Referrals, MaxReferrals),
		Monitoring:      take(note.Plan.Monitoring, MaxMonitoring),
	}
	return out
}

// take copies at most n leading items into a new, non-nil slice.
func take(items []string, n int) []string {
	if n > len(items) {
		n = len(items)
	}
	if n < 0 {
		n = 0
	}
	out := make([]string, n)
	copy(out, items[:n])
	return out
}
