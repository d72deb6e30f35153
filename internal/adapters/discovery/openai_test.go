package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oasis/internal/adapters/config"
	"oasis/pkg/errors"
)

func TestParseSearchResponse(t *testing.T) {
	body := `{"events":[{"title":"GITEX","date_start":"2026-03-10","date_end":"2026-03-12","impact":"high","confidence":0.9,"suggested_premium_pct":20}]}`

	result, err := parseSearchResponse(body)
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, result.Events, 1)
	assert.Equal(t, "GITEX", result.Events[0].Title)
	require.NotNil(t, result.Events[0].Confidence)
	assert.Equal(t, 0.9, *result.Events[0].Confidence)
	assert.Equal(t, 20, result.Events[0].SuggestedPremiumPct)
}

func TestParseSearchResponse_StripsCodeFences(t *testing.T) {
	body := "```json\n{\"events\":[{\"title\":\"Eid\",\"date_start\":\"2026-03-20\",\"date_end\":\"2026-03-22\",\"impact\":\"high\"}]}\n```"

	result, err := parseSearchResponse(body)
	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	assert.Equal(t, "Eid", result.Events[0].Title)
	assert.Nil(t, result.Events[0].Confidence, "omitted confidence must stay unset")
}

func TestParseSearchResponse_Malformed(t *testing.T) {
	_, err := parseSearchResponse("sorry, I cannot help with that")
	assert.ErrorIs(t, err, errors.ErrExternalService)
}

func TestNewOpenAISearcher_RequiresKey(t *testing.T) {
	_, err := NewOpenAISearcher(config.DiscoveryConfig{})
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}
