package workflow

// SectionResult reports one required section of a document.
// Missing lists the unmet requirements of the section as human-readable
// messages, in field declaration order; empty when Complete.
type SectionResult struct {
	Name     string   `json:"name"`
	Complete bool     `json:"complete"`
	Missing  []string `json:"missing"`
}

// CompletenessReport aggregates all required sections of a document.
// Advisory for UI rendering and a mandatory precondition for
// completeness-gated transitions.
type CompletenessReport struct {
	Sections    []SectionResult `json:"sections"`
	AllComplete bool            `json:"allComplete"`
}

// NewCompletenessReport derives the aggregate flag from the sections.
func NewCompletenessReport(sections ...SectionResult) *CompletenessReport {
	all := true
	for _, s := range sections {
		if !s.Complete {
			all = false
			break
		}
	}
	return &CompletenessReport{Sections: sections, AllComplete: all}
}

// MissingMessages flattens the unmet requirements of every incomplete
// section, preserving section order. This is the list a NotReady
// rejection carries to the caller.
func (r *CompletenessReport) MissingMessages() []string {
	var out []string
	for _, s := range r.Sections {
		if s.Complete {
			continue
		}
		out = append(out, s.Missing...)
	}
	return out
}

// Evaluator computes a completeness report for one document variant.
// Implementations are pure functions of the document's field values and
// attached sub-artifacts; they hold no shared mutable state.
type Evaluator interface {
	Evaluate(doc DocumentInfo) *CompletenessReport
}
