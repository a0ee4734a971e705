package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFileFetchesByOutcome(t *testing.T) {
	before := testutil.ToFloat64(FileFetches.WithLabelValues("local", OutcomeError))

	FileFetches.WithLabelValues("local", OutcomeError).Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(FileFetches.WithLabelValues("local", OutcomeError)))
}

func TestGauges(t *testing.T) {
	ActiveSessions.Set(0)
	ActiveSessions.Inc()
	ActiveSessions.Inc()
	ActiveSessions.Dec()
	assert.Equal(t, float64(1), testutil.ToFloat64(ActiveSessions))
}
