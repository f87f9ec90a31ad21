package schema

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListAssetsQueryDefaults(t *testing.T) {
	query, err := ParseListAssetsQuery(url.Values{}, 100)
	require.NoError(t, err)

	assert.Empty(t, query.IncludeTags)
	assert.Empty(t, query.ExcludeTags)
	assert.Nil(t, query.MetadataFilter)
	assert.Equal(t, DefaultListLimit, query.Limit)
	assert.Equal(t, 0, query.Offset)
	assert.Equal(t, SortCreatedAt, query.Sort)
	assert.Equal(t, OrderDesc, query.Order)
	assert.True(t, query.IncludePublic)
}

func TestParseListAssetsQueryCSVTags(t *testing.T) {
	values := url.Values{"include_tags": {"a,b,c"}}
	query, err := ParseListAssetsQuery(values, 100)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, query.IncludeTags)
}

func TestParseListAssetsQueryRepeatedTags(t *testing.T) {
	values := url.Values{"include_tags": {"Models", "loras,models", " VAE "}}
	query, err := ParseListAssetsQuery(values, 100)
	require.NoError(t, err)

	assert.Equal(t, []string{"models", "loras", "vae"}, query.IncludeTags)
}

func TestParseListAssetsQueryMetadataFilter(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		expectError bool
		expected    map[string]any
	}{
		{
			name:     "JSON object string",
			raw:      `{"key": "value"}`,
			expected: map[string]any{"key": "value"},
		},
		{
			name:        "scalar fails",
			raw:         `42`,
			expectError: true,
		},
		{
			name:        "array fails",
			raw:         `["a", "b"]`,
			expectError: true,
		},
		{
			name:        "null fails",
			raw:         `null`,
			expectError: true,
		},
		{
			name:        "malformed fails",
			raw:         `{"key":`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := url.Values{"metadata_filter": {tt.raw}}
			query, err := ParseListAssetsQuery(values, 100)
			if tt.expectError {
				var validationErr *ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, "metadata_filter", validationErr.Field)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, query.MetadataFilter)
		})
	}
}

func TestParseListAssetsQueryEnums(t *testing.T) {
	_, err := ParseListAssetsQuery(url.Values{"sort": {"size"}}, 100)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "sort", validationErr.Field)

	_, err = ParseListAssetsQuery(url.Values{"order": {"random"}}, 100)
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "order", validationErr.Field)

	query, err := ParseListAssetsQuery(
		url.Values{"sort": {"name"}, "order": {"asc"}}, 100,
	)
	require.NoError(t, err)
	assert.Equal(t, SortName, query.Sort)
	assert.Equal(t, OrderAsc, query.Order)
}

// Oversized limits are clamped to the configured ceiling rather than
// rejected; negative values still fail.
func TestParseListAssetsQueryLimitClamp(t *testing.T) {
	query, err := ParseListAssetsQuery(url.Values{"limit": {"5000"}}, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, query.Limit)

	_, err = ParseListAssetsQuery(url.Values{"limit": {"-1"}}, 100)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "limit", validationErr.Field)

	_, err = ParseListAssetsQuery(url.Values{"offset": {"nope"}}, 100)
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "offset", validationErr.Field)
}

func TestParseListAssetsQueryIncludePublicFalse(t *testing.T) {
	query, err := ParseListAssetsQuery(url.Values{"include_public": {"false"}}, 100)
	require.NoError(t, err)
	assert.False(t, query.IncludePublic)
}

func TestParseTagsListQueryDefaults(t *testing.T) {
	query, err := ParseTagsListQuery(url.Values{}, 500)
	require.NoError(t, err)

	assert.Empty(t, query.Prefix)
	assert.Equal(t, DefaultTagLimit, query.Limit)
	assert.Equal(t, 0, query.Offset)
	assert.Equal(t, TagOrderCountDesc, query.Order)
	assert.True(t, query.IncludeZero)
	assert.True(t, query.IncludePublic)
}

func TestParseTagsListQueryPrefixLowercased(t *testing.T) {
	query, err := ParseTagsListQuery(url.Values{"prefix": {" MOD "}}, 500)
	require.NoError(t, err)
	assert.Equal(t, "mod", query.Prefix)
}

func TestParseTagsListQueryOrderEnum(t *testing.T) {
	_, err := ParseTagsListQuery(url.Values{"order": {"count_asc"}}, 500)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "order", validationErr.Field)
}

func TestParseTagsRefineQueryDefaults(t *testing.T) {
	query, err := ParseTagsRefineQuery(url.Values{}, 500)
	require.NoError(t, err)

	assert.Empty(t, query.IncludeTags)
	assert.Empty(t, query.ExcludeTags)
	assert.Equal(t, DefaultTagLimit, query.Limit)
	assert.True(t, query.IncludePublic)
}

func TestParseUpdateAssetBody(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		expectedField string
	}{
		{
			name:          "empty body fails",
			body:          `{}`,
			expectedField: "body",
		},
		{
			name:          "invalid preview UUID fails",
			body:          `{"preview_id": "not-a-uuid"}`,
			expectedField: "preview_id",
		},
		{
			name:          "scalar user_metadata fails",
			body:          `{"user_metadata": "nope"}`,
			expectedField: "user_metadata",
		},
		{
			name:          "null user_metadata alone fails",
			body:          `{"user_metadata": null}`,
			expectedField: "body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUpdateAssetBody([]byte(tt.body))
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.expectedField, validationErr.Field)
		})
	}
}

func TestParseUpdateAssetBodySingleField(t *testing.T) {
	body, err := ParseUpdateAssetBody([]byte(`{"name": "new name"}`))
	require.NoError(t, err)

	require.NotNil(t, body.Name)
	assert.Equal(t, "new name", *body.Name)
	assert.Nil(t, body.MimeType)
	assert.Nil(t, body.PreviewID)
	assert.Nil(t, body.UserMetadata)
}

func TestParseUpdateAssetBodyAllFields(t *testing.T) {
	body, err := ParseUpdateAssetBody([]byte(`{
		"name": "test",
		"mime_type": "application/json",
		"preview_id": "550e8400-e29b-41d4-a716-446655440000",
		"user_metadata": {"key": "value"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "test", *body.Name)
	assert.Equal(t, "application/json", *body.MimeType)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", body.PreviewID.String())
	assert.Equal(t, map[string]any{"key": "value"}, body.UserMetadata)
}

func TestParseUploadAssetFromURLBody(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		expectError bool
	}{
		{
			name: "https URL",
			body: `{"url": "https://example.com/model.safetensors", "name": "model.safetensors"}`,
		},
		{
			name: "plain http URL",
			body: `{"url": "http://example.com/file.bin", "name": "file.bin"}`,
		},
		{
			name:        "ftp scheme fails",
			body:        `{"url": "ftp://example.com/file.bin", "name": "file.bin"}`,
			expectError: true,
		},
		{
			name:        "missing name fails",
			body:        `{"url": "https://example.com/file.bin"}`,
			expectError: true,
		},
		{
			name:        "host-less URL fails",
			body:        `{"url": "https://", "name": "file.bin"}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUploadAssetFromURLBody([]byte(tt.body))
			if tt.expectError {
				var validationErr *ValidationError
				assert.ErrorAs(t, err, &validationErr)

				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParseUploadAssetFromURLBodyTagsNormalized(t *testing.T) {
	body, err := ParseUploadAssetFromURLBody([]byte(
		`{"url": "https://example.com/m.bin", "name": "m", "tags": ["Models", "LORAS"]}`,
	))
	require.NoError(t, err)
	assert.Equal(t, TagList{"models", "loras"}, body.Tags)
}

func TestParseUploadAssetFromURLBodyTagsCSVString(t *testing.T) {
	body, err := ParseUploadAssetFromURLBody([]byte(
		`{"url": "https://example.com/m.bin", "name": "m", "tags": "Models, loras ,models"}`,
	))
	require.NoError(t, err)
	assert.Equal(t, TagList{"models", "loras"}, body.Tags)
}

// Normalizing, re-joining with commas and normalizing again must be a
// fixed point.
func TestNormalizeTagsIdempotent(t *testing.T) {
	inputs := [][]string{
		{"a,b,c"},
		{"Models", "LORAS", "models"},
		{" spaced , tags ", "", "MIXED,case"},
		{"single"},
		nil,
	}

	for _, input := range inputs {
		first := NormalizeTags(input)
		second := NormalizeTags([]string{strings.Join(first, ",")})
		assert.Equal(t, first, second, "input %v", input)
	}
}
