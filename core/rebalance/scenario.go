package rebalance

import (
	"errors"
	"fmt"

	"github.com/kilianp07/sirene/core/model"
)

// ErrNoScenarios reports that scenario selection was invoked with an empty
// scenario list.
var ErrNoScenarios = errors.New("no scenarios provided")

// ScenarioNotFoundError reports an explicitly requested scenario id that does
// not exist.
type ScenarioNotFoundError struct {
	ID string
}

func (e ScenarioNotFoundError) Error() string {
	return fmt.Sprintf("scenario %s not found", e.ID)
}

// SelectScenario picks the scenario to rebalance against. When explicitID is
// non-empty the matching scenario is returned, otherwise the one with the
// highest expected call volume wins, ties broken by input order.
func SelectScenario(scenarios []model.Scenario, explicitID string) (model.Scenario, error) {
	if explicitID != "" {
		for _, s := range scenarios {
			if s.ID == explicitID {
				return s, nil
			}
		}
		return model.Scenario{}, ScenarioNotFoundError{ID: explicitID}
	}
	if len(scenarios) == 0 {
		return model.Scenario{}, ErrNoScenarios
	}
	best := scenarios[0]
	for _, s := range scenarios[1:] {
		if s.ExpectedCallVolume > best.ExpectedCallVolume {
			best = s
		}
	}
	return best, nil
}
