package pipeline

import (
	"fmt"
	"strings"
)

// Step describes one named pipeline step and the slice of overall progress
// it contributes. Steps are immutable once registered.
type Step struct {
	Name          string
	Description   string
	ProgressStart float64
	ProgressEnd   float64
	Order         int // 1-based registration order
}

// ProgressRange returns the width of the step's progress slice.
func (s *Step) ProgressRange() float64 {
	return s.ProgressEnd - s.ProgressStart
}

// StepProgressInfo is the derived per-step progress detail persisted in
// status records and returned to pollers.
type StepProgressInfo struct {
	StepNumber       int     `json:"step_number"`
	TotalSteps       int     `json:"total_steps"`
	StepName         string  `json:"step_name"`
	StepDescription  string  `json:"step_description"`
	Progress         float64 `json:"progress"`
	RelativeProgress float64 `json:"relative_progress"`
}

// Clamped returns a copy with RelativeProgress limited to [0,1] for display
// and persistence.
func (i StepProgressInfo) Clamped() StepProgressInfo {
	switch {
	case i.RelativeProgress < 0:
		i.RelativeProgress = 0
	case i.RelativeProgress > 1:
		i.RelativeProgress = 1
	}
	return i
}

// Registry holds the ordered step table for one pipeline shape. Registration
// happens once at startup; execution only reads it.
type Registry struct {
	steps []*Step
}

// NewRegistry returns an empty step registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a step to the table, assigning its order. The progress
// range must be non-empty and the name unique.
func (r *Registry) Register(name, description string, progressStart, progressEnd float64) (*Step, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("pipeline: step name required")
	}
	if progressEnd <= progressStart {
		return nil, fmt.Errorf("pipeline: step %q progress range [%g,%g] is empty", name, progressStart, progressEnd)
	}
	for _, existing := range r.steps {
		if existing.Name == name {
			return nil, fmt.Errorf("pipeline: step %q already registered", name)
		}
	}
	step := &Step{
		Name:          name,
		Description:   description,
		ProgressStart: progressStart,
		ProgressEnd:   progressEnd,
		Order:         len(r.steps) + 1,
	}
	r.steps = append(r.steps, step)
	return step, nil
}

// MustRegister is Register for init-time tables where a bad range is a
// programming error.
func (r *Registry) MustRegister(name, description string, progressStart, progressEnd float64) *Step {
	step, err := r.Register(name, description, progressStart, progressEnd)
	if err != nil {
		panic(err)
	}
	return step
}

// TotalSteps returns the number of registered steps.
func (r *Registry) TotalSteps() int {
	return len(r.steps)
}

// Steps returns the registered steps in execution order.
func (r *Registry) Steps() []*Step {
	cp := make([]*Step, len(r.steps))
	copy(cp, r.steps)
	return cp
}

// ProgressInfo computes per-step progress detail for an absolute progress
// value. The value may fall outside the step's own range (used when
// reporting the pipeline's 0/100 bounds); the resulting relative progress is
// returned unclamped.
func (r *Registry) ProgressInfo(step *Step, progress float64) StepProgressInfo {
	if step == nil {
		return StepProgressInfo{
			TotalSteps:      len(r.steps),
			StepName:        "Not started",
			StepDescription: "Job not started",
		}
	}
	return StepProgressInfo{
		StepNumber:       step.Order,
		TotalSteps:       len(r.steps),
		StepName:         step.Name,
		StepDescription:  step.Description,
		Progress:         progress,
		RelativeProgress: (progress - step.ProgressStart) / step.ProgressRange(),
	}
}
