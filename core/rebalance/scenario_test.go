package rebalance

import (
	"errors"
	"testing"

	"github.com/kilianp07/sirene/core/model"
)

func TestSelectScenario_Explicit(t *testing.T) {
	scs := []model.Scenario{
		{ID: "1", Region: "north", ExpectedCallVolume: 0.2},
		{ID: "2", Region: "south", ExpectedCallVolume: 0.9},
	}
	sc, err := SelectScenario(scs, "1")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if sc.ID != "1" {
		t.Fatalf("got %s", sc.ID)
	}
}

func TestSelectScenario_ExplicitMissing(t *testing.T) {
	scs := []model.Scenario{{ID: "1"}}
	_, err := SelectScenario(scs, "9")
	var nf ScenarioNotFoundError
	if !errors.As(err, &nf) || nf.ID != "9" {
		t.Fatalf("expected ScenarioNotFoundError, got %v", err)
	}
}

func TestSelectScenario_MaxVolume(t *testing.T) {
	scs := []model.Scenario{
		{ID: "a", ExpectedCallVolume: 0.1},
		{ID: "b", ExpectedCallVolume: 0.8},
		{ID: "c", ExpectedCallVolume: 0.3},
	}
	sc, err := SelectScenario(scs, "")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if sc.ID != "b" {
		t.Fatalf("got %s", sc.ID)
	}
}

func TestSelectScenario_TieFirstWins(t *testing.T) {
	scs := []model.Scenario{
		{ID: "first", ExpectedCallVolume: 0.5},
		{ID: "second", ExpectedCallVolume: 0.5},
	}
	sc, err := SelectScenario(scs, "")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if sc.ID != "first" {
		t.Fatalf("tie must keep input order, got %s", sc.ID)
	}
}

func TestSelectScenario_Empty(t *testing.T) {
	if _, err := SelectScenario(nil, ""); !errors.Is(err, ErrNoScenarios) {
		t.Fatalf("expected ErrNoScenarios, got %v", err)
	}
}
