package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/sirene/core/factory"
)

type stubSink struct{ NopSink }

func TestNewMetricsSinkEmptyYieldsNop(t *testing.T) {
	sink, err := NewMetricsSink(nil)
	require.NoError(t, err)
	assert.IsType(t, NopSink{}, sink)
}

func TestNewMetricsSinkUnknownType(t *testing.T) {
	_, err := NewMetricsSink([]factory.ModuleConfig{{Type: "bogus"}})
	assert.Error(t, err)
}

func TestNewMetricsSinkSingle(t *testing.T) {
	require.NoError(t, RegisterMetricsSink("stub-single", func(map[string]any) (MetricsSink, error) {
		return stubSink{}, nil
	}))
	sink, err := NewMetricsSink([]factory.ModuleConfig{{Type: "stub-single"}})
	require.NoError(t, err)
	assert.IsType(t, stubSink{}, sink)
}

func TestNewMetricsSinkMulti(t *testing.T) {
	require.NoError(t, RegisterMetricsSink("stub-multi", func(map[string]any) (MetricsSink, error) {
		return stubSink{}, nil
	}))
	sink, err := NewMetricsSink([]factory.ModuleConfig{{Type: "stub-multi"}, {Type: "stub-multi"}})
	require.NoError(t, err)
	assert.IsType(t, &MultiSink{}, sink)
}

func TestRegisterMetricsSinkDuplicate(t *testing.T) {
	require.NoError(t, RegisterMetricsSink("stub-dup", func(map[string]any) (MetricsSink, error) {
		return stubSink{}, nil
	}))
	assert.Error(t, RegisterMetricsSink("stub-dup", func(map[string]any) (MetricsSink, error) {
		return stubSink{}, nil
	}))
}
