// Package catalog holds the asset catalog core: the index mapping assets to
// tags and metadata, the query engine over it, tag aggregation, and the
// mutation gateway that keeps both sides of the index consistent.
package catalog

import (
	"time"

	"github.com/google/uuid"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Requester identifies who is asking. Ownership resolution happens outside
// the catalog; every engine call receives the result explicitly.
type Requester struct {
	Owner string
}

// Anonymous reports whether the requester carries no owner identity.
func (r Requester) Anonymous() bool {
	return r.Owner == ""
}

// Asset is a cataloged item. Tags are stored lowercase and deduplicated;
// the asset record owns the authoritative copy of its tag set, the inverted
// index holds lookup keys only.
type Asset struct {
	ID           uuid.UUID
	Name         string
	MimeType     string
	PreviewID    *uuid.UUID
	UserMetadata map[string]any
	Tags         []string
	Owner        string
	Visibility   Visibility
	CreatedAt    time.Time
}

// VisibleTo applies the visibility gate: owners always see their own
// assets; public assets of other owners are included only when the caller
// asked for them.
func (a *Asset) VisibleTo(r Requester, includePublic bool) bool {
	if a.Owner == r.Owner {
		return true
	}

	return a.Visibility == VisibilityPublic && includePublic
}

// HasTag reports membership in the asset's own tag set.
func (a *Asset) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}

	return false
}

// clone returns a deep copy so readers never alias index-owned state.
func (a *Asset) clone() *Asset {
	copied := *a

	if a.PreviewID != nil {
		previewID := *a.PreviewID
		copied.PreviewID = &previewID
	}

	if a.Tags != nil {
		copied.Tags = make([]string, len(a.Tags))
		copy(copied.Tags, a.Tags)
	}

	if a.UserMetadata != nil {
		copied.UserMetadata = make(map[string]any, len(a.UserMetadata))
		for k, v := range a.UserMetadata {
			copied.UserMetadata[k] = v
		}
	}

	return &copied
}
