package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(year int, month time.Month, dayOfMonth int) time.Time {
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

func dayPtr(year int, month time.Month, dayOfMonth int) *time.Time {
	d := day(year, month, dayOfMonth)
	return &d
}

func TestFilterCriteria_Resolve_Presets(t *testing.T) {
	// Sexta-feira, março de ano bissexto
	today := day(2024, time.March, 15)

	tests := []struct {
		name          string
		preset        string
		expectedStart time.Time
		expectedEnd   time.Time
		compStart     time.Time
		compEnd       time.Time
	}{
		{
			name:          "today cobre apenas o dia atual",
			preset:        PresetToday,
			expectedStart: day(2024, time.March, 15),
			expectedEnd:   day(2024, time.March, 16),
			compStart:     day(2024, time.March, 14),
			compEnd:       day(2024, time.March, 15),
		},
		{
			name:          "last_7_days inclui hoje e os 7 dias anteriores",
			preset:        PresetLast7Days,
			expectedStart: day(2024, time.March, 8),
			expectedEnd:   day(2024, time.March, 16),
			compStart:     day(2024, time.March, 1),
			compEnd:       day(2024, time.March, 8),
		},
		{
			name:          "last_30_days atravessa fevereiro bissexto",
			preset:        PresetLast30Days,
			expectedStart: day(2024, time.February, 14),
			expectedEnd:   day(2024, time.March, 16),
			compStart:     day(2024, time.January, 15),
			compEnd:       day(2024, time.February, 14),
		},
		{
			name:          "this_month cobre o mês calendário corrente",
			preset:        PresetThisMonth,
			expectedStart: day(2024, time.March, 1),
			expectedEnd:   day(2024, time.April, 1),
			compStart:     day(2024, time.February, 1),
			compEnd:       day(2024, time.March, 1),
		},
		{
			name:          "last_month cobre o mês calendário anterior",
			preset:        PresetLastMonth,
			expectedStart: day(2024, time.February, 1),
			expectedEnd:   day(2024, time.March, 1),
			compStart:     day(2024, time.January, 1),
			compEnd:       day(2024, time.February, 1),
		},
		{
			name:          "this_year cobre o ano calendário corrente",
			preset:        PresetThisYear,
			expectedStart: day(2024, time.January, 1),
			expectedEnd:   day(2025, time.January, 1),
			compStart:     day(2023, time.January, 1),
			compEnd:       day(2024, time.January, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			criteria := FilterCriteria{Preset: tt.preset, Compare: true}

			filter, comparison := criteria.Resolve(today)

			require.NotNil(t, filter.Start)
			require.NotNil(t, filter.End)
			assert.Equal(t, tt.expectedStart, *filter.Start)
			assert.Equal(t, tt.expectedEnd, *filter.End)

			require.NotNil(t, comparison)
			assert.Equal(t, tt.compStart, *comparison.Start)
			assert.Equal(t, tt.compEnd, *comparison.End)

			// O período de comparação encosta no início do período primário
			// sem sobrepor (presets de dias corridos).
			if tt.preset == PresetToday || tt.preset == PresetLast7Days || tt.preset == PresetLast30Days {
				assert.Equal(t, *filter.Start, *comparison.End)
				assert.Equal(t, filter.End.Sub(*filter.Start), comparison.End.Sub(*comparison.Start))
			}
		})
	}
}

func TestFilterCriteria_Resolve_LastMonthAcrossYearBoundary(t *testing.T) {
	today := day(2024, time.January, 10)

	criteria := FilterCriteria{Preset: PresetLastMonth, Compare: true}
	filter, comparison := criteria.Resolve(today)

	require.NotNil(t, filter.Start)
	require.NotNil(t, filter.End)
	assert.Equal(t, day(2023, time.December, 1), *filter.Start)
	assert.Equal(t, day(2024, time.January, 1), *filter.End)

	require.NotNil(t, comparison)
	assert.Equal(t, day(2023, time.November, 1), *comparison.Start)
	assert.Equal(t, day(2023, time.December, 1), *comparison.End)
}

func TestFilterCriteria_Resolve_ExplicitDatesIntersectPreset(t *testing.T) {
	today := day(2024, time.March, 15)

	criteria := FilterCriteria{
		Preset:    PresetLast7Days,
		StartDate: dayPtr(2024, time.March, 12),
		EndDate:   dayPtr(2024, time.March, 13),
	}

	filter, _ := criteria.Resolve(today)

	// Datas explícitas restringem a janela do preset, nunca a substituem.
	require.NotNil(t, filter.Start)
	require.NotNil(t, filter.End)
	assert.Equal(t, day(2024, time.March, 12), *filter.Start)
	assert.Equal(t, day(2024, time.March, 14), *filter.End)
}

func TestFilterCriteria_Resolve_ExplicitDatesComparisonWindow(t *testing.T) {
	today := day(2024, time.March, 20)

	criteria := FilterCriteria{
		StartDate: dayPtr(2024, time.March, 1),
		EndDate:   dayPtr(2024, time.March, 10),
		Compare:   true,
	}

	filter, comparison := criteria.Resolve(today)

	require.NotNil(t, filter.Start)
	require.NotNil(t, filter.End)
	assert.Equal(t, day(2024, time.March, 1), *filter.Start)
	assert.Equal(t, day(2024, time.March, 11), *filter.End)

	// Janela anterior de mesmo comprimento (10 dias).
	require.NotNil(t, comparison)
	assert.Equal(t, day(2024, time.February, 20), *comparison.Start)
	assert.Equal(t, day(2024, time.March, 1), *comparison.End)
}

func TestFilterCriteria_Resolve_UnknownPresetIgnored(t *testing.T) {
	today := day(2024, time.March, 15)

	criteria := FilterCriteria{Preset: "fortnight", Product: "Notebook"}
	filter, comparison := criteria.Resolve(today)

	assert.Nil(t, filter.Start)
	assert.Nil(t, filter.End)
	assert.Equal(t, "Notebook", filter.Product)
	assert.Nil(t, comparison)
}

func TestFilterCriteria_Resolve_CompareWithoutBoundsHasNoComparison(t *testing.T) {
	today := day(2024, time.March, 15)

	criteria := FilterCriteria{StartDate: dayPtr(2024, time.March, 1), Compare: true}
	_, comparison := criteria.Resolve(today)

	// Sem preset e sem os dois limites a janela anterior não é derivável.
	assert.Nil(t, comparison)
}

func TestResolvedFilter_IsUnbounded(t *testing.T) {
	assert.True(t, ResolvedFilter{}.IsUnbounded())
	assert.False(t, ResolvedFilter{Product: "Notebook"}.IsUnbounded())
	assert.False(t, ResolvedFilter{Start: dayPtr(2024, time.March, 1)}.IsUnbounded())
}
