package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jotavaladouro/covid19/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2020, 5, 20, 9, 30, 0, 0, time.UTC)
	pct := 12.5
	summary := domain.RunSummary{
		RunID:        "run-1",
		From:         time.Date(2020, 2, 20, 0, 0, 0, 0, time.UTC),
		To:           time.Date(2020, 5, 20, 0, 0, 0, 0, time.UTC),
		Rows:         1710,
		Regions:      19,
		WeekOverWeek: domain.ComparisonRow{Region: "ES", Name: "Spain", Current: 90, Prior: 80, AbsoluteDiff: 10, PercentDiff: &pct},
		Artifacts:    []string{"Hospitalized_sp.png"},
		GeneratedAt:  now,
	}

	msg, err := serializeToMessage(summary)
	require.NoError(t, err)

	assert.Equal(t, []byte("run-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"run_id":"run-1"`)
	assert.Contains(t, string(msg.Value), `"percent_diff":12.5`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "run_id", msg.Headers[0].Key)
	assert.Equal(t, []byte("run-1"), msg.Headers[0].Value)
	assert.Equal(t, "generated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)

	var decoded domain.RunSummary
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, summary.Rows, decoded.Rows)
}

func TestSerializeToMessage_UndefinedPercent(t *testing.T) {
	msg, err := serializeToMessage(domain.RunSummary{RunID: "run-2"})
	require.NoError(t, err)
	assert.Contains(t, string(msg.Value), `"percent_diff":null`)
}
