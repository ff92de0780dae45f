package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gathered(t *testing.T, m *Metrics) map[string]float64 {
	t.Helper()
	families, err := m.Registry.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			key := f.GetName()
			for _, l := range metric.GetLabel() {
				key += "," + l.GetValue()
			}
			switch {
			case metric.GetCounter() != nil:
				values[key] = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				values[key] = metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				values[key] = float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	return values
}

func TestCollectors(t *testing.T) {
	m := New()

	m.PhaseEntered("A_BANS")
	m.PhaseEntered("A_BANS")
	m.MatchStarted()
	m.MatchStarted()
	m.MatchStopped()
	m.RconCall("ServerInfo", false)
	m.MatchFinished("complete")
	m.QueueSize(7)
	m.MMRChange(-12)

	values := gathered(t, m)
	assert.Equal(t, 2.0, values["matchbot_phase_entered_total,A_BANS"])
	assert.Equal(t, 1.0, values["matchbot_active_matches"])
	assert.Equal(t, 1.0, values["matchbot_rcon_commands_total,ServerInfo,failed"])
	assert.Equal(t, 1.0, values["matchbot_matches_finished_total,complete"])
	assert.Equal(t, 7.0, values["matchbot_queue_size"])
	assert.Equal(t, 1.0, values["matchbot_mmr_change"])
}
