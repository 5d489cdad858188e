package registry

import "github.com/harrison/dispatch/internal/models"

// DefaultRoster returns the built-in specialist roster used when no roster
// file is configured. Weights express declared confidence per domain.
func DefaultRoster() []models.Worker {
	return []models.Worker{
		{
			Name: "system-architect",
			Role: models.RoleArchitect,
			DomainWeights: map[models.DomainTag]float64{
				models.DomainDesign:         0.95,
				models.DomainAPI:            0.7,
				models.DomainInfrastructure: 0.6,
				models.DomainBackend:        0.5,
			},
		},
		{
			Name: "backend-engineer",
			Role: models.RoleImplementer,
			DomainWeights: map[models.DomainTag]float64{
				models.DomainBackend:  0.9,
				models.DomainAPI:      0.8,
				models.DomainDatabase: 0.6,
			},
		},
		{
			Name: "frontend-engineer",
			Role: models.RoleImplementer,
			DomainWeights: map[models.DomainTag]float64{
				models.DomainFrontend: 0.9,
				models.DomainAPI:      0.4,
			},
		},
		{
			Name: "database-engineer",
			Role: models.RoleImplementer,
			DomainWeights: map[models.DomainTag]float64{
				models.DomainDatabase: 0.95,
				models.DomainBackend:  0.5,
			},
		},
		{
			Name: "security-engineer",
			Role: models.RoleSpecialist,
			DomainWeights: map[models.DomainTag]float64{
				models.DomainSecurity:       0.95,
				models.DomainAuthentication: 0.9,
				models.DomainCompliance:     0.7,
				models.DomainPayments:       0.6,
			},
		},
		{
			Name: "performance-engineer",
			Role: models.RoleSpecialist,
			DomainWeights: map[models.DomainTag]float64{
				models.DomainPerformance: 0.95,
				models.DomainDatabase:    0.5,
				models.DomainBackend:     0.4,
			},
		},
		{
			Name: "devops-engineer",
			Role: models.RoleSpecialist,
			DomainWeights: map[models.DomainTag]float64{
				models.DomainInfrastructure: 0.95,
				models.DomainSecurity:       0.4,
			},
		},
		{
			Name: "qa-engineer",
			Role: models.RoleTester,
			DomainWeights: map[models.DomainTag]float64{
				models.DomainTesting:  0.95,
				models.DomainBackend:  0.3,
				models.DomainFrontend: 0.3,
			},
		},
		{
			Name: "technical-writer",
			Role: models.RoleWriter,
			DomainWeights: map[models.DomainTag]float64{
				models.DomainDocumentation: 0.95,
				models.DomainAPI:           0.4,
			},
		},
		{
			Name: "code-reviewer",
			Role: models.RoleReviewer,
			DomainWeights: map[models.DomainTag]float64{
				models.DomainBackend:  0.7,
				models.DomainFrontend: 0.7,
				models.DomainTesting:  0.5,
			},
		},
		{
			Name: "design-reviewer",
			Role: models.RoleReviewer,
			DomainWeights: map[models.DomainTag]float64{
				models.DomainDesign: 0.9,
				models.DomainAPI:    0.6,
			},
		},
		{
			Name: "security-reviewer",
			Role: models.RoleReviewer,
			DomainWeights: map[models.DomainTag]float64{
				models.DomainSecurity:       0.9,
				models.DomainAuthentication: 0.8,
				models.DomainCompliance:     0.7,
			},
		},
	}
}
