// Package analyzer classifies incoming work requests into structured
// analyses: domain tags, a complexity score, and a risk level.
package analyzer

import (
	"strings"

	"github.com/harrison/dispatch/internal/models"
)

// Complexity scoring weights. An explicit single-specialist override always
// wins and caps the score regardless of other signals.
const (
	perDomainWeight   = 0.15
	perDomainCap      = 0.45
	multiPhaseBonus   = 0.30
	requirementsBonus = 0.25
	overrideCap       = 0.30
	defaultComplexity = 0.5
)

// Analyzer derives an Analysis from a WorkRequest. Analysis is total: it
// never fails, falling back to safe defaults for unanalyzable input.
type Analyzer struct {
	patterns []TagPattern
}

// New creates an Analyzer with the default trigger table.
func New() *Analyzer {
	return NewWithPatterns(DefaultTagPatterns)
}

// NewWithPatterns creates an Analyzer with a custom trigger table.
// The table is copied so callers cannot mutate it afterwards.
func NewWithPatterns(patterns []TagPattern) *Analyzer {
	return &Analyzer{patterns: append([]TagPattern{}, patterns...)}
}

// Analyze classifies a work request. Unanalyzable input yields
// {unknown}, complexity 0.5, risk medium.
func (a *Analyzer) Analyze(req models.WorkRequest) models.Analysis {
	text := strings.ToLower(req.Description)

	analysis := models.Analysis{
		WorkerOverride: req.WorkerOverride,
	}

	for _, p := range a.patterns {
		for _, trigger := range p.Triggers {
			if matchesTrigger(text, trigger) {
				analysis.Domains = append(analysis.Domains, p.Tag)
				break
			}
		}
	}

	if len(analysis.Domains) == 0 {
		analysis.Domains = []models.DomainTag{models.DomainUnknown}
		analysis.ComplexityScore = defaultComplexity
		analysis.Risk = models.RiskMedium
		analysis.Defaulted = true
		if analysis.WorkerOverride != "" && analysis.ComplexityScore > overrideCap {
			analysis.ComplexityScore = overrideCap
		}
		analysis.SortDomains()
		return analysis
	}

	analysis.ComplexityScore = a.scoreComplexity(text, req, len(analysis.Domains))
	analysis.Risk = a.deriveRisk(text, analysis)
	analysis.SortDomains()
	return analysis
}

// scoreComplexity combines domain breadth, multi-phase language, and the
// presence of a structured requirements document into a score in [0,1].
func (a *Analyzer) scoreComplexity(text string, req models.WorkRequest, domainCount int) float64 {
	score := perDomainWeight * float64(domainCount)
	if score > perDomainCap {
		score = perDomainCap
	}

	for _, trigger := range multiPhaseTriggers {
		if matchesTrigger(text, trigger) {
			score += multiPhaseBonus
			break
		}
	}

	if HasStructuredRequirements(req.RequirementsDoc) {
		score += requirementsBonus
	}

	if score > 1 {
		score = 1
	}

	// An explicit single-specialist request wins over every other signal.
	if req.WorkerOverride != "" && score > overrideCap {
		score = overrideCap
	}

	return score
}

// deriveRisk maps matched domains to a risk level. Any sensitive domain
// forces at least High; critical language escalates sensitive work to
// Critical.
func (a *Analyzer) deriveRisk(text string, analysis models.Analysis) models.RiskLevel {
	risk := models.RiskLow
	if analysis.ComplexityScore >= 0.5 {
		risk = models.RiskMedium
	}

	if !analysis.HasSensitiveDomain() {
		return risk
	}

	risk = models.MaxRisk(risk, models.RiskHigh)
	for _, trigger := range criticalTriggers {
		if matchesTrigger(text, trigger) {
			return models.RiskCritical
		}
	}
	return risk
}
