package models

import "sort"

// WorkRequest is a free-form description of desired work submitted by a caller.
// It is immutable once submitted.
type WorkRequest struct {
	Description     string // Free-form description of the work
	WorkerOverride  string // Explicit worker name requested by the caller (optional)
	RequirementsDoc string // Attached requirements document, markdown (optional)
}

// Analysis is the structured classification derived from a WorkRequest.
// It is created once per request and never mutated.
type Analysis struct {
	Domains         []DomainTag // Matched domain tags, sorted for determinism
	ComplexityScore float64     // Complexity in [0,1]
	Risk            RiskLevel   // Derived risk level
	WorkerOverride  string      // Carried over from the request, caps complexity
	Defaulted       bool        // True when no signal matched and safe defaults applied
}

// HasDomain reports whether the analysis matched the given domain tag.
func (a Analysis) HasDomain(tag DomainTag) bool {
	for _, d := range a.Domains {
		if d == tag {
			return true
		}
	}
	return false
}

// HasSensitiveDomain reports whether any matched domain is in the sensitive set.
func (a Analysis) HasSensitiveDomain() bool {
	for _, d := range a.Domains {
		if SensitiveDomains[d] {
			return true
		}
	}
	return false
}

// SortDomains sorts the domain tags in place. Analyzers call this once before
// publishing an Analysis so identical requests produce identical analyses.
func (a *Analysis) SortDomains() {
	sort.Slice(a.Domains, func(i, j int) bool { return a.Domains[i] < a.Domains[j] })
}
