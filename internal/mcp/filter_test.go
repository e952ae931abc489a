package mcp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterRegexSingleMatch(t *testing.T) {
	body := strings.Repeat("a", 500) + "NEEDLE" + strings.Repeat("b", 500)

	res, err := filterRegex(body, "NEEDLE", 1)
	require.NoError(t, err)

	assert.Contains(t, res.Content, "NEEDLE")
	assert.Contains(t, res.Content, "=== Context Window 1")
	assert.True(t, strings.Contains(res.Content, "...aaa"), "leading ellipsis when window starts mid-body")
	assert.True(t, strings.HasSuffix(res.Content, "..."), "trailing ellipsis when window ends mid-body")

	assert.Equal(t, 1, res.Matches)
	assert.Equal(t, 1, res.Windows)
	assert.Equal(t, len(body), res.SourceBytes)
}

func TestFilterRegexMergesOverlappingWindows(t *testing.T) {
	body := "x" + strings.Repeat(".", 50) + "x" + strings.Repeat(".", 1000) + "x"

	res, err := filterRegex(body, "x", 0)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Matches)
	assert.Equal(t, 2, res.Windows)
	assert.NotContains(t, res.Content, "=== Context Window 3")
}

func TestFilterRegexNoMatches(t *testing.T) {
	res, err := filterRegex(`{"items":[]}`, "missing", 5)
	require.NoError(t, err)
	assert.Empty(t, res.Content)
	assert.Equal(t, 0, res.Matches)
	assert.Equal(t, "[0 matches in 0 windows, 0 of 12 bytes, ~0 of ~3 tokens]", res.Summary())
}

func TestFilterRegexInvalidPattern(t *testing.T) {
	_, err := filterRegex("body", "([", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid regex pattern")
}

func TestFilterRegexShortBodyHasNoEllipsis(t *testing.T) {
	res, err := filterRegex(`{"id":42}`, "42", 5)
	require.NoError(t, err)
	assert.NotContains(t, res.Content, "...")
	assert.Contains(t, res.Content, `{"id":42}`)
}

func TestFilterResultSummary(t *testing.T) {
	res := &FilterResult{Content: strings.Repeat("x", 40), Matches: 2, Windows: 1, SourceBytes: 400}
	assert.Equal(t, "[2 matches in 1 windows, 40 of 400 bytes, ~10 of ~100 tokens]", res.Summary())
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, estimateTokens(0))
	assert.Equal(t, 25, estimateTokens(100))
}
