package services

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProxyURL(t *testing.T) {
	got, err := buildProxyURL("https://reports.example.com/v1", "plays/daily", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://reports.example.com/v1/plays/daily", got)
}

func TestBuildProxyURLCarriesQuery(t *testing.T) {
	q := url.Values{}
	q.Set("from", "2026-08-01")
	q.Set("to", "2026-08-28")

	got, err := buildProxyURL("https://reports.example.com", "revenue", q)
	require.NoError(t, err)
	assert.Equal(t, "https://reports.example.com/revenue?from=2026-08-01&to=2026-08-28", got)
}

func TestBuildProxyURLRejectsTraversal(t *testing.T) {
	_, err := buildProxyURL("https://reports.example.com/v1", "../admin/keys", nil)
	assert.Error(t, err)

	_, err = buildProxyURL("https://reports.example.com/v1", "plays/../../secrets", nil)
	assert.Error(t, err)
}
