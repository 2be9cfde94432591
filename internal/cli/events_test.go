package cli

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct {
	name, data string
}

func collect(t *testing.T, stream string) ([]event, error) {
	t.Helper()
	var got []event
	err := readEvents(strings.NewReader(stream), func(name, data string) error {
		got = append(got, event{name, data})
		return nil
	})
	return got, err
}

func TestReadEventsParsesNamedEvents(t *testing.T) {
	stream := "event: connected\ndata: {}\n\n" +
		": keepalive\n\n" +
		"event: change\ndata: {\"type\":\"full\"}\n\n"

	got, err := collect(t, stream)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []event{
		{"connected", "{}"},
		{"change", `{"type":"full"}`},
	}, got)
}

func TestReadEventsJoinsDataLines(t *testing.T) {
	got, err := collect(t, "data: one\ndata: two\n\n")
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []event{{"message", "one\ntwo"}}, got)
}

func TestReadEventsDropsUnterminatedEvent(t *testing.T) {
	got, _ := collect(t, "event: change\ndata: {}")
	assert.Empty(t, got)
}

func TestReadEventsStopsOnCallbackError(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	err := readEvents(strings.NewReader("data: a\n\ndata: b\n\n"), func(string, string) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestPrintEventTruncatesText(t *testing.T) {
	var buf bytes.Buffer
	printEvent(&buf, "change", strings.Repeat("x", 150), false)

	line := buf.String()
	require.True(t, strings.HasSuffix(line, "...\n"))
	assert.Contains(t, line, "change: "+strings.Repeat("x", 100)+"...")
}

func TestPrintEventJSON(t *testing.T) {
	var buf bytes.Buffer
	printEvent(&buf, "abandoned", "{}", true)
	assert.Contains(t, buf.String(), `"event":"abandoned"`)
	assert.Contains(t, buf.String(), `"data":"{}"`)
}
