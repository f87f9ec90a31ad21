package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asset-catalog/schema"
)

func histogramQuery(mutate func(*schema.TagsListQuery)) *schema.TagsListQuery {
	query := &schema.TagsListQuery{
		Limit:         schema.DefaultTagLimit,
		Order:         schema.TagOrderCountDesc,
		IncludeZero:   true,
		IncludePublic: true,
	}
	if mutate != nil {
		mutate(query)
	}

	return query
}

func refineQuery(mutate func(*schema.TagsRefineQuery)) *schema.TagsRefineQuery {
	query := &schema.TagsRefineQuery{
		Limit:         schema.DefaultTagLimit,
		IncludePublic: true,
	}
	if mutate != nil {
		mutate(query)
	}

	return query
}

func TestTagHistogramCounts(t *testing.T) {
	index := buildIndex(t,
		newAsset("a", "", VisibilityPublic, "models", "loras"),
		newAsset("b", "", VisibilityPublic, "models"),
		newAsset("c", "", VisibilityPublic, "vae"),
	)

	entries := index.TagHistogram(Requester{}, histogramQuery(nil))

	assert.Equal(t, []TagCount{
		{Name: "models", Count: 2},
		{Name: "loras", Count: 1},
		{Name: "vae", Count: 1},
	}, entries)
}

func TestTagHistogramVisibilityScoped(t *testing.T) {
	index := buildIndex(t,
		newAsset("mine", "alice", VisibilityPrivate, "models"),
		newAsset("theirs", "bob", VisibilityPrivate, "models", "secret"),
		newAsset("shared", "bob", VisibilityPublic, "models"),
	)

	entries := index.TagHistogram(Requester{Owner: "alice"}, histogramQuery(
		func(q *schema.TagsListQuery) { q.IncludeZero = false },
	))

	assert.Equal(t, []TagCount{{Name: "models", Count: 2}}, entries)
}

func TestTagHistogramIncludeZero(t *testing.T) {
	index := NewIndex()
	asset := newAsset("a", "", VisibilityPublic, "models", "retired")
	require.NoError(t, index.Insert(asset))

	// Untag "retired"; it stays in the vocabulary at count zero.
	_, err := index.Update(asset.ID, AssetPatch{Tags: []string{"models"}})
	require.NoError(t, err)

	withZero := index.TagHistogram(Requester{}, histogramQuery(nil))
	assert.Equal(t, []TagCount{
		{Name: "models", Count: 1},
		{Name: "retired", Count: 0},
	}, withZero)

	withoutZero := index.TagHistogram(Requester{}, histogramQuery(
		func(q *schema.TagsListQuery) { q.IncludeZero = false },
	))
	for _, entry := range withoutZero {
		assert.NotZero(t, entry.Count)
	}
	assert.Equal(t, []TagCount{{Name: "models", Count: 1}}, withoutZero)
}

func TestTagHistogramPrefix(t *testing.T) {
	index := buildIndex(t,
		newAsset("a", "", VisibilityPublic, "models", "motion", "loras"),
	)

	entries := index.TagHistogram(Requester{}, histogramQuery(
		func(q *schema.TagsListQuery) { q.Prefix = "mo" },
	))

	assert.Equal(t, []TagCount{
		{Name: "models", Count: 1},
		{Name: "motion", Count: 1},
	}, entries)
}

func TestTagHistogramOrderAndPagination(t *testing.T) {
	index := buildIndex(t,
		newAsset("a", "", VisibilityPublic, "b-tag", "a-tag"),
		newAsset("b", "", VisibilityPublic, "b-tag", "c-tag"),
	)

	// count_desc with alphabetical tie-break.
	entries := index.TagHistogram(Requester{}, histogramQuery(nil))
	assert.Equal(t, []TagCount{
		{Name: "b-tag", Count: 2},
		{Name: "a-tag", Count: 1},
		{Name: "c-tag", Count: 1},
	}, entries)

	// Alphabetical order plus offset/limit paging.
	entries = index.TagHistogram(Requester{}, histogramQuery(func(q *schema.TagsListQuery) {
		q.Order = schema.TagOrderName
		q.Offset = 1
		q.Limit = 1
	}))
	assert.Equal(t, []TagCount{{Name: "b-tag", Count: 2}}, entries)
}

func TestTagHistogramEmptyCatalog(t *testing.T) {
	index := NewIndex()

	entries := index.TagHistogram(Requester{}, histogramQuery(nil))

	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestTagsRefineSuggestsCoOccurringTags(t *testing.T) {
	index := buildIndex(t,
		newAsset("a", "", VisibilityPublic, "models", "loras"),
		newAsset("b", "", VisibilityPublic, "models", "loras", "anime"),
		newAsset("c", "", VisibilityPublic, "models", "photo"),
		newAsset("d", "", VisibilityPublic, "vae"),
	)

	entries := index.TagsRefine(Requester{}, refineQuery(func(q *schema.TagsRefineQuery) {
		q.IncludeTags = []string{"models"}
	}))

	// Only tags from assets that already match the filter, ranked by
	// co-occurrence, never echoing the selection.
	assert.Equal(t, []TagCount{
		{Name: "loras", Count: 2},
		{Name: "anime", Count: 1},
		{Name: "photo", Count: 1},
	}, entries)
}

func TestTagsRefineNeverReturnsSelectedTags(t *testing.T) {
	index := buildIndex(t,
		newAsset("a", "", VisibilityPublic, "models", "loras", "anime"),
		newAsset("b", "", VisibilityPublic, "models", "photo"),
	)

	entries := index.TagsRefine(Requester{}, refineQuery(func(q *schema.TagsRefineQuery) {
		q.IncludeTags = []string{"models"}
		q.ExcludeTags = []string{"photo"}
	}))

	for _, entry := range entries {
		assert.NotEqual(t, "models", entry.Name)
		assert.NotEqual(t, "photo", entry.Name)
	}
	assert.Equal(t, []TagCount{
		{Name: "anime", Count: 1},
		{Name: "loras", Count: 1},
	}, entries)
}

func TestTagsRefineHonorsExcludeFilter(t *testing.T) {
	index := buildIndex(t,
		newAsset("a", "", VisibilityPublic, "models", "anime", "nsfw"),
		newAsset("b", "", VisibilityPublic, "models", "photo"),
	)

	entries := index.TagsRefine(Requester{}, refineQuery(func(q *schema.TagsRefineQuery) {
		q.IncludeTags = []string{"models"}
		q.ExcludeTags = []string{"nsfw"}
	}))

	// Asset "a" is filtered out entirely, so "anime" cannot surface.
	assert.Equal(t, []TagCount{{Name: "photo", Count: 1}}, entries)
}

func TestTagsRefineLimit(t *testing.T) {
	index := buildIndex(t,
		newAsset("a", "", VisibilityPublic, "models", "t1", "t2", "t3", "t4"),
	)

	entries := index.TagsRefine(Requester{}, refineQuery(func(q *schema.TagsRefineQuery) {
		q.IncludeTags = []string{"models"}
		q.Limit = 2
	}))

	assert.Equal(t, []TagCount{
		{Name: "t1", Count: 1},
		{Name: "t2", Count: 1},
	}, entries)
}
