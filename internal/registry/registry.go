// Package registry holds the static worker roster. The roster is loaded once
// at process start and read-only thereafter, which keeps the scorer and
// planner pure functions over explicit inputs.
package registry

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/harrison/dispatch/internal/models"
)

// Registry is an immutable capability registry of workers.
type Registry struct {
	workers map[string]models.Worker
	names   []string // sorted, for deterministic iteration
}

// New builds a registry from the given worker profiles. Every profile is
// validated and duplicate names are rejected.
func New(workers []models.Worker) (*Registry, error) {
	r := &Registry{workers: make(map[string]models.Worker, len(workers))}
	for i := range workers {
		w := workers[i]
		if err := w.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.workers[w.Name]; dup {
			return nil, fmt.Errorf("worker %s: duplicate name", w.Name)
		}
		r.workers[w.Name] = w
		r.names = append(r.names, w.Name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Get retrieves a worker by name.
func (r *Registry) Get(name string) (models.Worker, bool) {
	w, ok := r.workers[name]
	return w, ok
}

// Exists reports whether a worker with the given name is in the roster.
func (r *Registry) Exists(name string) bool {
	_, ok := r.workers[name]
	return ok
}

// List returns all workers in deterministic (name) order.
func (r *Registry) List() []models.Worker {
	out := make([]models.Worker, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.workers[name])
	}
	return out
}

// ByRole returns all workers with the given role, in name order.
func (r *Registry) ByRole(role models.WorkerRole) []models.Worker {
	var out []models.Worker
	for _, name := range r.names {
		if w := r.workers[name]; w.Role == role {
			out = append(out, w)
		}
	}
	return out
}

// Len returns the number of workers in the roster.
func (r *Registry) Len() int {
	return len(r.names)
}

// rosterFile mirrors the on-disk YAML roster format.
type rosterFile struct {
	Workers []models.Worker `yaml:"workers"`
}

// LoadRoster reads a worker roster from a YAML file and builds a registry.
// If the file does not exist, the built-in default roster is returned.
func LoadRoster(path string) (*Registry, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return New(DefaultRoster())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}

	var file rosterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse roster file: %w", err)
	}
	if len(file.Workers) == 0 {
		return nil, fmt.Errorf("roster file %s defines no workers", path)
	}

	return New(file.Workers)
}
