// Package scenario registers and runs ordered end-to-end scenarios against a
// hub through the hubclient harness.
package scenario

import (
	"context"
	"fmt"
	"testing"
	"time"

	hubclient "github.com/bmcszk/go-hubclient"
	"github.com/hashicorp/go-multierror"
)

// Harness is what every step receives: the configured client and the
// configuration it was built from.
type Harness struct {
	Client *hubclient.Client
	Config *hubclient.Config
	// StepTimeout bounds the context handed to each step. Zero means 1 minute.
	StepTimeout time.Duration
}

// NewHarness builds a harness from cfg.
func NewHarness(cfg *hubclient.Config, options ...hubclient.ClientOption) (*Harness, error) {
	client, err := cfg.NewClient(options...)
	if err != nil {
		return nil, err
	}
	return &Harness{Client: client, Config: cfg}, nil
}

// Context returns a context for one step, cancelled when the test ends or the
// step timeout passes.
func (h *Harness) Context(t *testing.T) context.Context {
	t.Helper()
	timeout := h.StepTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// StepFunc performs one step and asserts on its outcome through t.
type StepFunc func(t *testing.T, h *Harness)

// Step is a named unit of a scenario.
type Step struct {
	Name string
	Run  StepFunc
}

func (s Step) validate() error {
	if s.Run == nil {
		return fmt.Errorf("step %q has no Run function", s.Name)
	}
	return nil
}

// Scenario is an ordered list of steps. Later steps may rely on state that
// earlier steps created.
type Scenario struct {
	Name  string
	Steps []Step
}

// Validate reports every step that cannot run.
func (sc Scenario) Validate() error {
	var errs *multierror.Error
	for i, step := range sc.Steps {
		if err := step.validate(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("scenario %q step %d: %w", sc.Name, i+1, err))
		}
	}
	return errs.ErrorOrNil()
}

// Suite holds explicitly registered scenarios.
type Suite struct {
	scenarios []Scenario
}

// NewSuite creates a suite with the given scenarios.
func NewSuite(scenarios ...Scenario) *Suite {
	return &Suite{scenarios: scenarios}
}

// Add registers more scenarios; they run in registration order.
func (s *Suite) Add(scenarios ...Scenario) *Suite {
	s.scenarios = append(s.scenarios, scenarios...)
	return s
}

// Scenarios returns the registered scenarios.
func (s *Suite) Scenarios() []Scenario {
	out := make([]Scenario, len(s.scenarios))
	copy(out, s.scenarios)
	return out
}

// Run executes every scenario as a subtest of t.
func (s *Suite) Run(t *testing.T, h *Harness) {
	t.Helper()
	for _, sc := range s.scenarios {
		Run(t, h, sc)
	}
}

// Run executes one scenario as a subtest, its steps as nested subtests in
// declared order. Once a step fails the remaining steps are skipped.
func Run(t *testing.T, h *Harness, sc Scenario) bool {
	t.Helper()
	return t.Run(sc.Name, func(t *testing.T) {
		failed := ""
		for _, step := range sc.Steps {
			passed := t.Run(step.Name, func(t *testing.T) {
				if failed != "" {
					t.Skipf("skipped: step %q failed", failed)
				}
				if err := step.validate(); err != nil {
					t.Fatal(err)
				}
				step.Run(t, h)
			})
			if !passed && failed == "" {
				failed = step.Name
			}
		}
	})
}
