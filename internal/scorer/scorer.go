// Package scorer ranks workers against an analysis. Scoring is a pure
// function of (Analysis, Registry) so repeated calls on identical input are
// reproducible.
package scorer

import (
	"sort"

	"github.com/harrison/dispatch/internal/models"
	"github.com/harrison/dispatch/internal/registry"
)

// Score produces candidates sorted descending by confidence, with a stable
// worker-name tiebreak. Workers with zero domain overlap are omitted.
//
// When the analysis carries an explicit worker override that exists in the
// registry, a single (worker, 1.0) candidate is returned regardless of
// domain overlap.
func Score(analysis models.Analysis, reg *registry.Registry) []models.Candidate {
	if analysis.WorkerOverride != "" {
		if w, ok := reg.Get(analysis.WorkerOverride); ok {
			return []models.Candidate{{Worker: w, Confidence: 1.0}}
		}
	}

	var candidates []models.Candidate
	for _, w := range reg.List() {
		confidence := Confidence(analysis, w)
		if confidence <= 0 {
			continue
		}
		candidates = append(candidates, models.Candidate{Worker: w, Confidence: confidence})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].Worker.Name < candidates[j].Worker.Name
	})

	return candidates
}

// Confidence computes the normalized dot-product of the analysis domains
// (as an indicator vector) and the worker's domain weights, clipped to [0,1].
func Confidence(analysis models.Analysis, w models.Worker) float64 {
	if len(analysis.Domains) == 0 {
		return 0
	}

	var sum float64
	for _, tag := range analysis.Domains {
		sum += w.DomainWeights[tag]
	}

	confidence := sum / float64(len(analysis.Domains))
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}
