package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrReportNotFound is returned when a run report cannot be found in the store.
var ErrReportNotFound = errors.New("report not found")

// Recipe is one proven-sound total order over every step.
type Recipe []*Step

// Names returns the step names in execution order.
func (r Recipe) Names() []string {
	names := make([]string, len(r))
	for i, s := range r {
		names[i] = s.Name
	}
	return names
}

// Key identifies the recipe by the signatures of its steps.
func (r Recipe) Key() string {
	sigs := make([]string, len(r))
	for i, s := range r {
		sigs[i] = s.Signature()
	}
	return strings.Join(sigs, ";")
}

func (r Recipe) String() string {
	return strings.Join(r.Names(), ",")
}

// StepResult is the value one step produced within a recipe.
type StepResult struct {
	Step     string        `json:"step"`
	Type     string        `json:"type"`
	Value    any           `json:"value"`
	Duration time.Duration `json:"duration"`
}

// RecipeResult is the outcome of one recipe execution.
type RecipeResult struct {
	Index   int          `json:"index"`
	Steps   []string     `json:"steps"`
	Results []StepResult `json:"results"`
	Error   string       `json:"error,omitempty"`

	Err error `json:"-"`
}

// Failed reports whether the recipe stopped before its last step.
func (r *RecipeResult) Failed() bool {
	return r.Err != nil || r.Error != ""
}

// Final returns the value of the last step that ran, if any.
func (r *RecipeResult) Final() (any, bool) {
	if len(r.Results) == 0 {
		return nil, false
	}
	return r.Results[len(r.Results)-1].Value, true
}

// Report is the outcome of one Run call.
type Report struct {
	RunID      string         `json:"run_id"`
	Pipeline   string         `json:"pipeline,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Recipes    []RecipeResult `json:"recipes"`
	Error      string         `json:"error,omitempty"`

	// Sealed holds the encrypted report when it went through an encrypting
	// store; the other content fields are then empty.
	Sealed []byte `json:"sealed,omitempty"`
}

// Failed reports whether any recipe of the run failed.
func (r *Report) Failed() bool {
	if r.Error != "" {
		return true
	}
	for i := range r.Recipes {
		if r.Recipes[i].Failed() {
			return true
		}
	}
	return false
}

// Edge is the compatibility verdict for one ordered pair of steps.
type Edge struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Compatible bool   `json:"compatible"`
}
