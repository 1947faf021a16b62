package dates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMonth(t *testing.T) {
	t.Run("numeric date expands month name", func(t *testing.T) {
		got := ExtractMonth("DOB 05/03/2023 ...")
		require.NotNil(t, got)
		assert.Equal(t, "March 2023", *got)
	})

	t.Run("abbreviated date keeps abbreviation", func(t *testing.T) {
		got := ExtractMonth("Report date 05 Mar 2023")
		require.NotNil(t, got)
		assert.Equal(t, "Mar 2023", *got)
	})

	t.Run("abbreviation is capitalized, not expanded", func(t *testing.T) {
		got := ExtractMonth("collected 11 DEC 2022 at 08:00")
		require.NotNil(t, got)
		assert.Equal(t, "Dec 2022", *got)

		got = ExtractMonth("collected 11 jan   2024")
		require.NotNil(t, got)
		assert.Equal(t, "Jan 2024", *got)
	})

	t.Run("numeric pattern wins even when it appears later", func(t *testing.T) {
		got := ExtractMonth("Sample 01 Feb 2024\nPrinted on 17/08/2024")
		require.NotNil(t, got)
		assert.Equal(t, "August 2024", *got)
	})

	t.Run("first numeric date is used", func(t *testing.T) {
		got := ExtractMonth("10/01/2024 then 10/02/2024")
		require.NotNil(t, got)
		assert.Equal(t, "January 2024", *got)
	})

	t.Run("unknown numeric month passes through", func(t *testing.T) {
		got := ExtractMonth("ref 01/13/2023")
		require.NotNil(t, got)
		assert.Equal(t, "13 2023", *got)
	})

	t.Run("search is not anchored", func(t *testing.T) {
		got := ExtractMonth("Date:05/06/2021Time")
		require.NotNil(t, got)
		assert.Equal(t, "June 2021", *got)
	})

	t.Run("no date is absent, not an error", func(t *testing.T) {
		assert.Nil(t, ExtractMonth("Fasting Blood Sugar 95 mg/dl"))
		assert.Nil(t, ExtractMonth(""))
	})

	t.Run("non-month three letter word is ignored", func(t *testing.T) {
		assert.Nil(t, ExtractMonth("12 abc 2023"))
	})
}
