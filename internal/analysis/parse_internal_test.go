package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRelevanceResponse_PlainJSON(t *testing.T) {
	payload, err := parseRelevanceResponse(`{"score": 85, "rationale": "strong match", "evidence": ["quote"], "gaps": [], "recommendations": []}`)

	require.NoError(t, err)
	assert.Equal(t, 85.0, *payload.Score)
	assert.Equal(t, "strong match", payload.Rationale)
	assert.Equal(t, []string{"quote"}, payload.Evidence)
}

func TestParseRelevanceResponse_CodeFenceAndProse(t *testing.T) {
	reply := "Here is my assessment:\n```json\n{\"score\": 40, \"rationale\": \"partial\"}\n```"

	payload, err := parseRelevanceResponse(reply)

	require.NoError(t, err)
	assert.Equal(t, 40.0, *payload.Score)
}

func TestParseRelevanceResponse_MissingScore(t *testing.T) {
	_, err := parseRelevanceResponse(`{"rationale": "no score given"}`)
	assert.Error(t, err)
}

func TestParseRelevanceResponse_ScoreOutOfRange(t *testing.T) {
	_, err := parseRelevanceResponse(`{"score": 120, "rationale": "x"}`)
	assert.Error(t, err)
}

func TestParseRelevanceResponse_EmptyRationale(t *testing.T) {
	_, err := parseRelevanceResponse(`{"score": 50, "rationale": "  "}`)
	assert.Error(t, err)
}

func TestParseRelevanceResponse_NoJSON(t *testing.T) {
	_, err := parseRelevanceResponse("I cannot answer that.")
	assert.Error(t, err)
}

func TestParseTopicsResponse_CapsAndDedupes(t *testing.T) {
	topics, err := parseTopicsResponse(`["access control", "Access Control", "encryption", "", "logging"]`)

	require.NoError(t, err)
	assert.Equal(t, []string{"access control", "encryption", "logging"}, topics)
}

func TestParseTopicsResponse_EmptyArray(t *testing.T) {
	_, err := parseTopicsResponse(`[]`)
	assert.Error(t, err)
}

func TestParseDetailsResponse_FixedKeys(t *testing.T) {
	details, err := parseDetailsResponse(`{"technologies": ["AWS"], "processes": [], "policies": ["password policy"], "procedures": [], "tools": ["Nessus"], "responsible_parties": ["ISSO"]}`)

	require.NoError(t, err)
	assert.Equal(t, []string{"AWS"}, details.Technologies)
	assert.Equal(t, []string{"password policy"}, details.Policies)
	assert.Equal(t, []string{"Nessus"}, details.Tools)
	assert.Equal(t, []string{"ISSO"}, details.ResponsibleParties)
	assert.Empty(t, details.Processes)
}
