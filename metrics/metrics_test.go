package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New()
	m.SamplesGenerated("train", 80)
	m.SamplesGenerated("eval", 20)
	m.HashtronFitted(0, 12, 3*time.Millisecond)
	m.HashtronFitted(1, 40, 5*time.Millisecond)
	m.EvalAccuracy(0.5)
	m.PhaseDuration("train-model", time.Second)

	assert.Equal(t, float64(80), testutil.ToFloat64(m.samplesGenerated.WithLabelValues("train")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.hashtronsTrained))
	assert.Equal(t, 0.5, testutil.ToFloat64(m.evalAccuracy))

	text, err := m.Text()
	require.NoError(t, err)
	out := string(text)
	assert.Contains(t, out, `letters_samples_generated_total{split="eval"} 20`)
	assert.Contains(t, out, "letters_hashtron_fit_seconds_count 2")
	assert.Contains(t, out, "letters_program_length_sum 52")
	assert.Contains(t, out, `letters_phase_duration_seconds{phase="train-model"} 1`)
	assert.True(t, strings.HasPrefix(out, "# HELP "))
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.HashtronFitted(0, 1, time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(a.hashtronsTrained))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.hashtronsTrained))
}
