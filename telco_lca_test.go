package telcolcaexporter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetMetricLabel(t *testing.T) {
	m := new(Metric)

	m.AddLabel("foo", "bar")
	assert.Equal(t, "bar", m.Labels["foo"])

	m.AddLabel("foo", "baz")
	assert.Equal(t, "baz", m.Labels["foo"])

	m.AddLabel("zoo", "zaz")
	assert.Equal(t, "baz", m.Labels["foo"])
	assert.Equal(t, "zaz", m.Labels["zoo"])

	assert.Len(t, m.Labels, 2)
}

func TestSanitizeLabels(t *testing.T) {
	m := Metric{
		Name: "lifetime_co2_kg",
		Labels: map[string]string{
			"scenario:name":      "sleep+renewable",
			"component.lifetime": "manufacturing",
		},
		Value: 1.0,
	}

	assert.Equal(t, map[string]string{
		"scenario_name":      "sleep+renewable",
		"component_lifetime": "manufacturing",
	}, m.SanitizeLabels().Labels)
}

func TestMergeLabels(t *testing.T) {
	merged := MergeLabels(
		map[string]string{"scenario": "baseline", "empty": ""},
		map[string]string{"year": "0"},
	)
	assert.Equal(t, map[string]string{"scenario": "baseline", "year": "0"}, merged)
}

func TestInvalidParameterErr(t *testing.T) {
	cause := errors.New("must lie in [0,1)")
	err := &InvalidParameterErr{Parameter: "sleep_frac", Value: 1.5, Err: cause}

	assert.Contains(t, err.Error(), "sleep_frac=1.5")
	assert.ErrorIs(t, err, cause)
}
