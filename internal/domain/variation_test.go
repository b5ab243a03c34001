package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seriesOf(values ...int) Series {
	s := make(Series, len(values))
	for i, v := range values {
		s[i] = Point{Date: date(2020, time.March, 1).AddDate(0, 0, i), Value: v}
	}
	return s
}

func changeValues(changes []Change) []any {
	out := make([]any, len(changes))
	for i, c := range changes {
		if c.Defined {
			out[i] = c.Value
		}
	}
	return out
}

func TestVariation(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		filter SpikeFilter
		want   []any
	}{
		{
			name:   "first difference",
			values: []int{100, 110, 125, 125, 120},
			want:   []any{nil, 10, 15, 0, -5},
		},
		{
			name:   "spike kept when filter disabled",
			values: []int{100, 110, 20110, 20120},
			filter: SpikeFilter{Threshold: 10000},
			want:   []any{nil, 10, 20000, 10},
		},
		{
			name:   "single spike replaced by predecessor",
			values: []int{100, 110, 125, 20125, 20130},
			filter: SpikeFilter{Enabled: true, Threshold: 10000},
			want:   []any{nil, 10, 15, 15, 5},
		},
		{
			name:   "consecutive spikes reuse last valid diff",
			values: []int{100, 107, 20107, 40107, 40110},
			filter: SpikeFilter{Enabled: true, Threshold: 10000},
			want:   []any{nil, 7, 7, 7, 3},
		},
		{
			name:   "spike without predecessor stays undefined",
			values: []int{0, 50000, 50010},
			filter: SpikeFilter{Enabled: true, Threshold: 10000},
			want:   []any{nil, nil, 10},
		},
		{
			name:   "threshold is strict",
			values: []int{0, 10, 10010},
			filter: SpikeFilter{Enabled: true, Threshold: 10000},
			want:   []any{nil, 10, 10000},
		},
		{
			name:   "large drops are not spikes",
			values: []int{30000, 10, 20},
			filter: SpikeFilter{Enabled: true, Threshold: 10000},
			want:   []any{nil, -29990, 10},
		},
		{
			name:   "single missing value drops then rebounds",
			values: []int{50000, 51000, 0, 52000, 53000},
			filter: SpikeFilter{Enabled: true, Threshold: 10000},
			want:   []any{nil, 1000, -51000, -51000, 1000},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Variation(seriesOf(tt.values...), tt.filter)
			assert.Equal(t, tt.want, changeValues(got))
		})
	}
}

func TestVariation_KeepsDates(t *testing.T) {
	s := seriesOf(1, 2, 3)

	got := Variation(s, SpikeFilter{})

	require.Len(t, got, 3)
	for i := range s {
		assert.Equal(t, s[i].Date, got[i].Date)
	}
	assert.False(t, got[0].Defined)
}

func TestVariation_Empty(t *testing.T) {
	assert.Empty(t, Variation(nil, SpikeFilter{Enabled: true}))
}
