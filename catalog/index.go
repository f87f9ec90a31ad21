package catalog

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Index is the source of truth for asset records and the inverted tag
// mapping. A single RWMutex covers both structures, so a reader can never
// observe an asset in the primary map that is missing from the tag index or
// vice versa. The vocabulary set keeps every tag ever applied, surviving
// untagging, which is what include_zero listings report against.
type Index struct {
	mu         sync.RWMutex
	assets     map[uuid.UUID]*Asset
	byTag      map[string]map[uuid.UUID]struct{}
	vocabulary map[string]struct{}
}

func NewIndex() *Index {
	return &Index{
		assets:     make(map[uuid.UUID]*Asset),
		byTag:      make(map[string]map[uuid.UUID]struct{}),
		vocabulary: make(map[string]struct{}),
	}
}

// Insert adds a new asset and indexes its tags. The asset is copied in,
// so the caller keeps no alias into index state.
func (ix *Index) Insert(asset *Asset) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, exists := ix.assets[asset.ID]; exists {
		return &ConflictError{
			Conflict: fmt.Sprintf("asset %s already exists", asset.ID),
		}
	}

	stored := asset.clone()
	ix.assets[stored.ID] = stored
	ix.indexTagsLocked(stored)

	return nil
}

// Get returns a copy of the asset with the given id.
func (ix *Index) Get(id uuid.UUID) (*Asset, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	asset, exists := ix.assets[id]
	if !exists {
		return nil, &NotFoundError{ID: id}
	}

	return asset.clone(), nil
}

// AssetPatch is the internal partial-update command. Nil fields are left
// untouched; a non-nil Tags slice replaces the whole tag set.
type AssetPatch struct {
	Name         *string
	MimeType     *string
	PreviewID    *uuid.UUID
	UserMetadata map[string]any
	Tags         []string
}

func (p *AssetPatch) empty() bool {
	return p.Name == nil && p.MimeType == nil && p.PreviewID == nil &&
		p.UserMetadata == nil && p.Tags == nil
}

// Update merges the patch into the asset under a single write lock, so two
// concurrent updates to the same asset never interleave field-by-field.
// The preview reference is checked against the live map inside the same
// critical section.
func (ix *Index) Update(id uuid.UUID, patch AssetPatch) (*Asset, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	asset, exists := ix.assets[id]
	if !exists {
		return nil, &NotFoundError{ID: id}
	}

	if patch.empty() {
		return nil, ErrEmptyPatch
	}

	if patch.PreviewID != nil {
		if *patch.PreviewID == id {
			return nil, ErrPreviewSelfReference
		}
		if _, ok := ix.assets[*patch.PreviewID]; !ok {
			return nil, ErrPreviewNotFound
		}
	}

	if patch.Name != nil {
		asset.Name = *patch.Name
	}
	if patch.MimeType != nil {
		asset.MimeType = *patch.MimeType
	}
	if patch.PreviewID != nil {
		previewID := *patch.PreviewID
		asset.PreviewID = &previewID
	}
	if patch.UserMetadata != nil {
		merged := make(map[string]any, len(patch.UserMetadata))
		for k, v := range patch.UserMetadata {
			merged[k] = v
		}
		asset.UserMetadata = merged
	}
	if patch.Tags != nil {
		ix.unindexTagsLocked(asset)
		asset.Tags = append([]string(nil), patch.Tags...)
		ix.indexTagsLocked(asset)
	}

	return asset.clone(), nil
}

// Remove deletes the asset from both maps. Its tags stay in the
// vocabulary.
func (ix *Index) Remove(id uuid.UUID) (*Asset, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	asset, exists := ix.assets[id]
	if !exists {
		return nil, &NotFoundError{ID: id}
	}

	ix.unindexTagsLocked(asset)
	delete(ix.assets, id)

	return asset, nil
}

// Len returns the number of indexed assets.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return len(ix.assets)
}

func (ix *Index) indexTagsLocked(asset *Asset) {
	for _, tag := range asset.Tags {
		bucket, ok := ix.byTag[tag]
		if !ok {
			bucket = make(map[uuid.UUID]struct{})
			ix.byTag[tag] = bucket
		}
		bucket[asset.ID] = struct{}{}
		ix.vocabulary[tag] = struct{}{}
	}
}

func (ix *Index) unindexTagsLocked(asset *Asset) {
	for _, tag := range asset.Tags {
		bucket, ok := ix.byTag[tag]
		if !ok {
			continue
		}
		delete(bucket, asset.ID)
		if len(bucket) == 0 {
			delete(ix.byTag, tag)
		}
	}
}

// filterLocked walks the candidate set for the given filter and returns
// clones of the matches. Callers must hold at least the read lock. When
// include tags are present the walk starts from the smallest tag bucket
// instead of the whole primary map.
func (ix *Index) filterLocked(
	r Requester,
	includePublic bool,
	includeTags, excludeTags []string,
	metadataFilter map[string]any,
) []*Asset {
	candidates := ix.candidatesLocked(includeTags)

	matches := make([]*Asset, 0, len(candidates))
	for _, asset := range candidates {
		if !asset.VisibleTo(r, includePublic) {
			continue
		}
		if !ix.hasAllTagsLocked(asset.ID, includeTags) {
			continue
		}
		if ix.hasAnyTagLocked(asset.ID, excludeTags) {
			continue
		}
		if !MatchesMetadata(asset.UserMetadata, metadataFilter) {
			continue
		}
		matches = append(matches, asset.clone())
	}

	return matches
}

func (ix *Index) candidatesLocked(includeTags []string) []*Asset {
	if len(includeTags) == 0 {
		all := make([]*Asset, 0, len(ix.assets))
		for _, asset := range ix.assets {
			all = append(all, asset)
		}

		return all
	}

	smallest := ix.byTag[includeTags[0]]
	for _, tag := range includeTags[1:] {
		bucket := ix.byTag[tag]
		if len(bucket) < len(smallest) {
			smallest = bucket
		}
	}

	candidates := make([]*Asset, 0, len(smallest))
	for id := range smallest {
		candidates = append(candidates, ix.assets[id])
	}

	return candidates
}

func (ix *Index) hasAllTagsLocked(id uuid.UUID, tags []string) bool {
	for _, tag := range tags {
		if _, ok := ix.byTag[tag][id]; !ok {
			return false
		}
	}

	return true
}

func (ix *Index) hasAnyTagLocked(id uuid.UUID, tags []string) bool {
	for _, tag := range tags {
		if _, ok := ix.byTag[tag][id]; ok {
			return true
		}
	}

	return false
}
