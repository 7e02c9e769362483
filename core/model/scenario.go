package model

// Scenario is one row of environmental weighting used by the rebalancer.
// Region names the "hot" region whose stations receive a boosted weight and
// ExpectedCallVolume drives the boost multiplier. Scenarios are ephemeral
// inputs to a single rebalance invocation and are never stored by the core.
type Scenario struct {
	ID                 string
	Region             string // lower-cased on ingestion
	ExpectedCallVolume float64
}
