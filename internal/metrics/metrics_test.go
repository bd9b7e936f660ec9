package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitLabel(t *testing.T) {
	assert.Equal(t, "hours", unitLabel("hours"))
	assert.Equal(t, "books", unitLabel("  Books "))
	assert.Equal(t, "other", unitLabel("glasses of water"))
	assert.Equal(t, "other", unitLabel(""))
}

func TestProgressLoggedBoundsUnitLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(progressEntries))

	for _, unit := range []string{"a", "b", "c", "d", "Hours", "HOURS"} {
		ProgressLogged(unit, 1)
	}

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)

	labels := map[string]bool{}
	for _, m := range families[0].GetMetric() {
		for _, lp := range m.GetLabel() {
			labels[lp.GetValue()] = true
		}
	}
	for label := range labels {
		assert.True(t, label == "other" || knownUnits[label], "unexpected unit label %q", label)
	}
	assert.True(t, labels["other"])
	assert.True(t, labels["hours"])
}
