package models

// DomainTag classifies both incoming work requests and worker capabilities.
type DomainTag string

// Known domain tags. Requests and worker rosters may use any subset of these.
const (
	DomainSecurity       DomainTag = "security"
	DomainAuthentication DomainTag = "authentication"
	DomainPayments       DomainTag = "payments"
	DomainCompliance     DomainTag = "compliance"
	DomainFrontend       DomainTag = "frontend"
	DomainBackend        DomainTag = "backend"
	DomainDatabase       DomainTag = "database"
	DomainAPI            DomainTag = "api"
	DomainInfrastructure DomainTag = "infrastructure"
	DomainPerformance    DomainTag = "performance"
	DomainTesting        DomainTag = "testing"
	DomainDocumentation  DomainTag = "documentation"
	DomainDesign         DomainTag = "design"
	DomainUnknown        DomainTag = "unknown"
)

// SensitiveDomains are domains that force at least High risk when matched.
var SensitiveDomains = map[DomainTag]bool{
	DomainSecurity:       true,
	DomainAuthentication: true,
	DomainPayments:       true,
	DomainCompliance:     true,
}

// RiskLevel is a coarse classification driving how strict quality gates must be.
type RiskLevel string

// Risk levels in ascending order of strictness.
const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var riskRank = map[RiskLevel]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskHigh:     2,
	RiskCritical: 3,
}

// AtLeast reports whether r is at least as severe as other.
// Unknown levels rank below Low.
func (r RiskLevel) AtLeast(other RiskLevel) bool {
	return riskRank[r] >= riskRank[other]
}

// MaxRisk returns the more severe of two risk levels.
func MaxRisk(a, b RiskLevel) RiskLevel {
	if riskRank[a] >= riskRank[b] {
		return a
	}
	return b
}

// ValidRiskLevel reports whether the given string names a known risk level.
func ValidRiskLevel(s string) bool {
	_, ok := riskRank[RiskLevel(s)]
	return ok
}
