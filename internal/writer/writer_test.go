// internal/writer/writer_test.go
package writer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/register-poller/internal/decoder"
	"github.com/tamzrod/register-poller/internal/poller"
)

// ---- fixtures ----

func sampleResult() poller.PollResult {
	return poller.PollResult{
		UnitID:   "heatpump",
		At:       time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Duration: 42 * time.Millisecond,
		Fields: []decoder.DecodedField{
			{Address: 0x03, Name: "Working Status", Value: decoder.FlagList{
				{Name: "Hot Water Active", Set: true},
				{Name: "Heating Active", Set: false},
			}},
			{Address: 0x0E, Name: "Inlet water temperature", Value: decoder.ScaledNumber(21.5), Unit: "°C"},
			{Address: 0x2A, Name: "DC water pump speed", Value: decoder.ScaledNumber(1450)},
		},
	}
}

type recordingWriter struct {
	calls int
	err   error
}

func (r *recordingWriter) Write(poller.PollResult) error {
	r.calls++
	return r.err
}

// ---- multi ----

func TestMulti_DeliversToEverySink(t *testing.T) {
	a, b, c := &recordingWriter{}, &recordingWriter{err: errors.New("disk full")}, &recordingWriter{}

	m := NewMulti()
	m.Add("a", a)
	m.Add("b", b)
	m.Add("c", c)

	err := m.Write(sampleResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink=b")
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
	assert.Equal(t, 1, c.calls, "a failing sink does not stop the others")
}

func TestMulti_RefusesFailedCycle(t *testing.T) {
	a := &recordingWriter{}
	m := NewMulti()
	m.Add("a", a)

	err := m.Write(poller.PollResult{Err: errors.New("timeout")})
	assert.ErrorIs(t, err, ErrFailedCycle)
	assert.Zero(t, a.calls)
}

// ---- csv ----

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVWriter_RewritesEachCycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modbus_data.csv")
	w := NewCSVWriter(path, false)

	require.NoError(t, w.Write(sampleResult()))
	require.NoError(t, w.Write(sampleResult()))

	rows := readCSV(t, path)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Name", "Value", "Unit"}, rows[0])
	assert.Equal(t, []string{"Working Status", "Hot Water Active: True, Heating Active: False", ""}, rows[1])
	assert.Equal(t, []string{"Inlet water temperature", "21.5", "°C"}, rows[2])
	assert.Equal(t, []string{"DC water pump speed", "1450", ""}, rows[3])
}

func TestCSVWriter_AppendWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	w := NewCSVWriter(path, true)

	require.NoError(t, w.Write(sampleResult()))
	require.NoError(t, w.Write(sampleResult()))

	rows := readCSV(t, path)
	require.Len(t, rows, 7)
	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, "Working Status", rows[4][0])
}

func TestCSVWriter_BadPath(t *testing.T) {
	w := NewCSVWriter(filepath.Join(t.TempDir(), "missing", "x.csv"), false)
	assert.Error(t, w.Write(sampleResult()))
}

// ---- console ----

func TestConsoleWriter_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewConsoleWriter(&buf, StyleTable).Write(sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "heatpump @ 2024-03-01 10:00:00")
	assert.Contains(t, out, "0x000E")
	assert.Contains(t, out, "Inlet water temperature")
	assert.Contains(t, out, "21.5")
}

func TestConsoleWriter_Plain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewConsoleWriter(&buf, StylePlain).Write(sampleResult()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Inlet water temperature: 21.5 °C", lines[1])
}

// ---- jsonl ----

func TestJSONLWriter_OneObjectPerCycle(t *testing.T) {
	var buf bytes.Buffer
	w := newJSONLWriterTo(&buf)

	require.NoError(t, w.Write(sampleResult()))
	require.NoError(t, w.Write(sampleResult()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	assert.Equal(t, "heatpump", got["device"])
	assert.Equal(t, float64(42), got["took_ms"])
	assert.Len(t, got["fields"], 3)
}

func TestJSONLWriter_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readings.jsonl")
	w, err := NewJSONLWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.Write(sampleResult()))
	require.NoError(t, w.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, bytes.Count(b, []byte("\n")))
}

// ---- latest ----

func TestLatest(t *testing.T) {
	l := NewLatest()
	_, ok := l.Get()
	assert.False(t, ok)

	assert.ErrorIs(t, l.Write(poller.PollResult{Err: errors.New("x")}), ErrFailedCycle)
	_, ok = l.Get()
	assert.False(t, ok)

	require.NoError(t, l.Write(sampleResult()))
	got, ok := l.Get()
	require.True(t, ok)
	assert.Equal(t, "heatpump", got.UnitID)
}
