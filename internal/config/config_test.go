package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/lanepath/internal/core/observability/log"
	"github.com/zeusync/lanepath/internal/core/planner"
)

const scenarioYAML = `
log_level: debug
loop:
  tick: 0.05
  max_ticks: 5000
telemetry:
  enabled: true
  addr: 127.0.0.1:9099
agents:
  - name: seeder
    strategy: sweep
    field: { length: 20, width: 10, row_spacing: 1 }
    motion: { speed: 2, marker_interval: 1 }
    start: { x: 1, y: 0, z: 2, heading: 0 }
  - name: walker
    strategy: grid
    field: { rows: 5, columns: 5, cell_size: 2 }
    motion: { speed: 2, rotation_speed: 90 }
`

func TestLoadScenario(t *testing.T) {
	s, err := Load(strings.NewReader(scenarioYAML))
	require.NoError(t, err)

	assert.Equal(t, log.LevelDebug, s.Level())
	assert.Equal(t, 0.05, s.Loop.Tick)
	assert.EqualValues(t, 5000, s.Loop.MaxTicks)
	assert.True(t, s.Telemetry.Enabled)
	require.Len(t, s.Agents, 2)

	seeder := s.Agents[0]
	assert.Equal(t, planner.StrategySweep, seeder.Strategy)
	assert.Equal(t, 1.0, seeder.Field.RowSpacing)
	assert.Equal(t, 1.0, seeder.Motion.MarkerInterval)
	assert.Equal(t, 1.0, seeder.Start.Pose().Position.Xv)

	walker := s.Agents[1]
	assert.Equal(t, planner.StrategyGrid, walker.Strategy)
	assert.Equal(t, 5, walker.Field.Rows)
	assert.Equal(t, 90.0, walker.Motion.RotationSpeed)
}

func TestLoadKeepsDefaults(t *testing.T) {
	s, err := Load(strings.NewReader("log_level: warn\n"))
	require.NoError(t, err)
	assert.Equal(t, Default().Loop, s.Loop)
	require.Len(t, s.Agents, 1)
	assert.Equal(t, "tractor", s.Agents[0].Name)
}

func TestLoadEmptyDocumentIsDefault(t *testing.T) {
	s, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoadRejectsInvalidScenarios(t *testing.T) {
	cases := map[string]string{
		"zero tick":       "loop: { tick: 0 }\n",
		"real-time tick":  "loop: { tick: 1e-10, real_time: true }\n",
		"bad level":       "log_level: loud\n",
		"unknown field":   "colour: green\n",
		"duplicate names": "agents:\n  - {name: a, strategy: sweep, field: {length: 1, width: 1, row_spacing: 1}, motion: {speed: 1}}\n  - {name: a, strategy: sweep, field: {length: 1, width: 1, row_spacing: 1}, motion: {speed: 1}}\n",
		"telemetry addr":  "telemetry: { enabled: true, addr: '' }\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadSurfacesPlannerErrors(t *testing.T) {
	doc := "agents:\n  - {name: a, strategy: sweep, field: {length: 10, width: 10, row_spacing: 0}, motion: {speed: 1}}\n"
	_, err := Load(strings.NewReader(doc))
	require.ErrorIs(t, err, planner.ErrInvalidConfig)
	assert.Contains(t, err.Error(), `agent "a"`)
}

func TestEncodeThenLoadFile(t *testing.T) {
	s, err := Load(strings.NewReader(scenarioYAML))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.Encode(&buf))

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}
