package progress

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerFinishMessages(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTracker("Extracting", 2, WithWriter(&buf))
	tr.Tick()
	tr.Describe("Extracting dice")
	tr.FinishError(errors.New("timeout"))
	assert.Contains(t, buf.String(), "Extracting dice error: timeout")

	buf.Reset()
	sp := NewSpinner("Querying warehouse", WithWriter(&buf))
	sp.FinishSkipped("cached")
	assert.Contains(t, buf.String(), "Querying warehouse skipped (cached)")
}

func TestTrackerFinishSuccessIsQuiet(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTracker("Extracting", 1, WithWriter(&buf))
	tr.Tick()
	tr.FinishSuccess()
	assert.NotContains(t, buf.String(), "error")
	assert.NotContains(t, buf.String(), "skipped")
}
