package analyzer

import (
	"strings"

	"github.com/harrison/dispatch/internal/models"
)

// TagPattern maps a domain tag to the trigger phrases that select it.
// Keeping the matching rules data-driven lets them be tested independently
// of the scoring logic.
type TagPattern struct {
	Tag      models.DomainTag
	Triggers []string
}

// DefaultTagPatterns is the authoritative trigger table for domain tagging.
// Matching is case-insensitive substring containment.
var DefaultTagPatterns = []TagPattern{
	{
		Tag: models.DomainSecurity,
		Triggers: []string{
			"security", "vulnerability", "exploit", "encrypt", "xss",
			"csrf", "injection", "penetration", "hardening",
		},
	},
	{
		Tag: models.DomainAuthentication,
		Triggers: []string{
			"auth", "login", "session", "oauth", "sso", "token",
			"password", "credential",
		},
	},
	{
		Tag: models.DomainPayments,
		Triggers: []string{
			"payment", "billing", "invoice", "checkout", "stripe",
			"refund", "subscription",
		},
	},
	{
		Tag: models.DomainCompliance,
		Triggers: []string{
			"compliance", "gdpr", "hipaa", "audit", "pci", "sox",
			"retention policy",
		},
	},
	{
		Tag: models.DomainFrontend,
		Triggers: []string{
			"frontend", "front-end", "ui", "ux", "css", "react",
			"component", "responsive", "browser",
		},
	},
	{
		Tag: models.DomainBackend,
		Triggers: []string{
			"backend", "back-end", "server", "service", "endpoint",
			"business logic", "worker queue",
		},
	},
	{
		Tag: models.DomainDatabase,
		Triggers: []string{
			"database", "schema", "migration", "sql", "query", "index",
			"postgres", "sqlite",
		},
	},
	{
		Tag: models.DomainAPI,
		Triggers: []string{
			"api", "rest", "grpc", "graphql", "webhook", "sdk",
		},
	},
	{
		Tag: models.DomainInfrastructure,
		Triggers: []string{
			"infra", "infrastructure", "deploy", "kubernetes", "docker",
			"terraform", "ci/cd", "pipeline",
		},
	},
	{
		Tag: models.DomainPerformance,
		Triggers: []string{
			"performance", "latency", "slow", "optimize", "throughput",
			"cache", "profiling", "memory leak",
		},
	},
	{
		Tag: models.DomainTesting,
		Triggers: []string{
			"test", "coverage", "regression", "e2e", "integration test",
			"unit test", "qa",
		},
	},
	{
		Tag: models.DomainDocumentation,
		Triggers: []string{
			"docs", "documentation", "readme", "runbook", "changelog",
			"tutorial",
		},
	},
	{
		Tag: models.DomainDesign,
		Triggers: []string{
			"design", "architecture", "architect", "rfc", "proposal",
			"redesign", "restructure",
		},
	},
}

// multiPhaseTriggers indicate work spanning multiple weeks or phases.
var multiPhaseTriggers = []string{
	"multi-week", "multi-phase", "multiweek", "multiphase",
	"phase 1", "phase one", "several weeks", "milestone", "roadmap",
	"end-to-end", "ground up", "greenfield", "quarter",
}

// criticalTriggers escalate sensitive-domain work from High to Critical.
var criticalTriggers = []string{
	"production outage", "data breach", "incident", "critical",
	"emergency", "customer data", "exploit in the wild",
}

// matchesTrigger reports whether the trigger occurs in text starting at a
// word boundary. Matching is prefix-style: "auth" matches "authentication"
// but not "oauth", and "ui" never matches inside "build".
func matchesTrigger(text, trigger string) bool {
	for start := 0; ; {
		idx := strings.Index(text[start:], trigger)
		if idx < 0 {
			return false
		}
		pos := start + idx
		if pos == 0 || !isWordChar(text[pos-1]) {
			return true
		}
		start = pos + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
