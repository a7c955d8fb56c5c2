// File: internal/domain/soap_note.go
package domain

// PlanDetail holds the advisory lists of the Plan section.
// Order is the order the model produced.
type PlanDetail struct {
	Investigations  []string `json:"investigations" yaml:"investigations"`
	Medications     []string `json:"medications" yaml:"medications"`
	LifestyleAdvice []string `json:"lifestyleAdvice" yaml:"lifestyleAdvice"`
	Referrals       []string `json:"referrals" yaml:"referrals"`
	Monitoring      []string `json:"monitoring" yaml:"monitoring"`
}

// IsEmpty reports whether every plan list is empty.
func (p PlanDetail) IsEmpty() bool {
	return len(p.Investigations) == 0 &&
		len(p.Medications) == 0 &&
		len(p.LifestyleAdvice) == 0 &&
		len(p.Referrals) == 0 &&
		len(p.Monitoring) == 0
}

// SoapNote is the structured clinical note returned to the chat UI.
// RawResponse is only set when the model reply was not structured clinical
// content (a refusal, or text that could not be parsed).
type SoapNote struct {
	Subjective  string     `json:"subjective" yaml:"subjective"`
	Objective   string     `json:"objective" yaml:"objective"`
	Assessment  string     `json:"assessment" yaml:"assessment"`
	Plan        PlanDetail `json:"plan" yaml:"plan"`
	HtmlFormat  string     `json:"htmlFormat" yaml:"htmlFormat"`
	RawResponse string     `json:"rawResponse,omitempty" yaml:"rawResponse,omitempty"`
}

// IsDegraded reports whether the note carries raw model text instead of
// structured clinical fields.
func (n *SoapNote) IsDegraded() bool {
	return n.RawResponse != ""
}

// HasClinicalContent reports whether any SOAP section is populated.
func (n *SoapNote) HasClinicalContent() bool {
	return n.Subjective != "" || n.Objective != "" || n.Assessment != "" || !n.Plan.IsEmpty()
}
