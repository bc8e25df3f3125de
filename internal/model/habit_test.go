package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeTitle(t *testing.T) {
	require.Equal(t, NormalizeTitle("Read"), NormalizeTitle(" read "))
	require.Equal(t, NormalizeTitle("MORNING RUN"), NormalizeTitle("morning run"))
	require.NotEqual(t, NormalizeTitle("Read"), NormalizeTitle("Read more"))

	// Unicode case folding, not just ASCII lowering
	require.Equal(t, NormalizeTitle("Straße"), NormalizeTitle("STRASSE"))
}

func TestNormalizeTitle_Concurrent(t *testing.T) {
	want := NormalizeTitle(" Straße ")

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = NormalizeTitle(" Straße ")
		}()
	}
	wg.Wait()

	for _, got := range results {
		require.Equal(t, want, got)
	}
}

func TestValidStatus(t *testing.T) {
	require.True(t, ValidStatus(HabitStatusPending))
	require.True(t, ValidStatus(HabitStatusDone))
	require.False(t, ValidStatus("in_progress"))
	require.False(t, ValidStatus(""))
}

func TestValidFrequency(t *testing.T) {
	require.True(t, ValidFrequency(FrequencyDaily))
	require.True(t, ValidFrequency(FrequencyWeekly))
	require.True(t, ValidFrequency(FrequencyMonthly))
	require.False(t, ValidFrequency("hourly"))
	require.False(t, ValidFrequency(""))
}
