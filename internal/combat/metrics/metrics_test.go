package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/tacticsforge/combatcore/internal/combat/metrics"
)

func TestMustRegister_RegistersEveryCollectorExactlyOnce(t *testing.T) {
	c := metrics.New()
	reg := prometheus.NewRegistry()

	require.NotPanics(t, func() { c.MustRegister(reg) })

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, name := range []string{
		"combatcore_combats_total",
		"combatcore_ticks_total",
		"combatcore_events_emitted_total",
		"combatcore_combat_duration_seconds",
		"combatcore_skill_errors_total",
	} {
		require.True(t, names[name], "missing metric family %s", name)
	}
}

func TestObserveEvent_IncrementsLabeledCounter(t *testing.T) {
	c := metrics.New()
	c.ObserveEvent("damage")
	c.ObserveEvent("damage")
	c.ObserveEvent("heal")

	m := &dto.Metric{}
	require.NoError(t, c.EventsEmitted.WithLabelValues("damage").Write(m))
	require.Equal(t, 2.0, m.GetCounter().GetValue())
}

func TestObserveEvent_NilReceiverIsANoOp(t *testing.T) {
	var c *metrics.Collectors
	require.NotPanics(t, func() { c.ObserveEvent("anything") })
}
