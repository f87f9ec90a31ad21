// Package schema normalizes the loosely-typed request surface of the asset
// catalog into strict query and command objects. Permissive input shapes
// (CSV or list tags, object or JSON-string metadata filters) are resolved
// here exactly once; everything past this package is canonical.
package schema

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

type SortField string

const (
	SortCreatedAt SortField = "created_at"
	SortName      SortField = "name"
)

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

type TagOrder string

const (
	TagOrderCountDesc TagOrder = "count_desc"
	TagOrderName      TagOrder = "name"
)

const (
	DefaultListLimit = 20
	DefaultTagLimit  = 100
)

// ListAssetsQuery is the normalized form of GET /assets parameters.
type ListAssetsQuery struct {
	IncludeTags    []string
	ExcludeTags    []string
	MetadataFilter map[string]any
	Limit          int
	Offset         int
	Sort           SortField
	Order          SortOrder
	IncludePublic  bool
}

// ParseListAssetsQuery validates and canonicalizes raw query parameters.
// Limits above maxLimit are clamped, never rejected; negative values and
// unknown enum members fail validation.
func ParseListAssetsQuery(values url.Values, maxLimit int) (*ListAssetsQuery, error) {
	query := &ListAssetsQuery{
		IncludeTags:   NormalizeTags(values["include_tags"]),
		ExcludeTags:   NormalizeTags(values["exclude_tags"]),
		Sort:          SortCreatedAt,
		Order:         OrderDesc,
		IncludePublic: true,
	}

	if raw := values.Get("metadata_filter"); raw != "" {
		filter, err := ParseMetadataFilter("metadata_filter", raw)
		if err != nil {
			return nil, err
		}
		query.MetadataFilter = filter
	}

	limit, err := parseLimit(values, "limit", DefaultListLimit, maxLimit)
	if err != nil {
		return nil, err
	}
	query.Limit = limit

	offset, err := parseNonNegative(values, "offset", 0)
	if err != nil {
		return nil, err
	}
	query.Offset = offset

	if raw := values.Get("sort"); raw != "" {
		switch SortField(raw) {
		case SortCreatedAt, SortName:
			query.Sort = SortField(raw)
		default:
			return nil, newValidationError("sort", "must be one of: created_at, name")
		}
	}

	if raw := values.Get("order"); raw != "" {
		switch SortOrder(raw) {
		case OrderAsc, OrderDesc:
			query.Order = SortOrder(raw)
		default:
			return nil, newValidationError("order", "must be one of: asc, desc")
		}
	}

	includePublic, err := parseBool(values, "include_public", true)
	if err != nil {
		return nil, err
	}
	query.IncludePublic = includePublic

	return query, nil
}

// TagsListQuery is the normalized form of GET /tags parameters.
type TagsListQuery struct {
	Prefix        string
	Limit         int
	Offset        int
	Order         TagOrder
	IncludeZero   bool
	IncludePublic bool
}

func ParseTagsListQuery(values url.Values, maxLimit int) (*TagsListQuery, error) {
	query := &TagsListQuery{
		Prefix:        strings.ToLower(strings.TrimSpace(values.Get("prefix"))),
		Order:         TagOrderCountDesc,
		IncludeZero:   true,
		IncludePublic: true,
	}

	limit, err := parseLimit(values, "limit", DefaultTagLimit, maxLimit)
	if err != nil {
		return nil, err
	}
	query.Limit = limit

	offset, err := parseNonNegative(values, "offset", 0)
	if err != nil {
		return nil, err
	}
	query.Offset = offset

	if raw := values.Get("order"); raw != "" {
		switch TagOrder(raw) {
		case TagOrderCountDesc, TagOrderName:
			query.Order = TagOrder(raw)
		default:
			return nil, newValidationError("order", "must be one of: count_desc, name")
		}
	}

	includeZero, err := parseBool(values, "include_zero", true)
	if err != nil {
		return nil, err
	}
	query.IncludeZero = includeZero

	includePublic, err := parseBool(values, "include_public", true)
	if err != nil {
		return nil, err
	}
	query.IncludePublic = includePublic

	return query, nil
}

// TagsRefineQuery is the normalized form of GET /tags/refine parameters.
type TagsRefineQuery struct {
	IncludeTags   []string
	ExcludeTags   []string
	Limit         int
	IncludePublic bool
}

func ParseTagsRefineQuery(values url.Values, maxLimit int) (*TagsRefineQuery, error) {
	query := &TagsRefineQuery{
		IncludeTags:   NormalizeTags(values["include_tags"]),
		ExcludeTags:   NormalizeTags(values["exclude_tags"]),
		IncludePublic: true,
	}

	limit, err := parseLimit(values, "limit", DefaultTagLimit, maxLimit)
	if err != nil {
		return nil, err
	}
	query.Limit = limit

	includePublic, err := parseBool(values, "include_public", true)
	if err != nil {
		return nil, err
	}
	query.IncludePublic = includePublic

	return query, nil
}

// UpdateAssetBody is the normalized PATCH /assets/:id body. Nil fields were
// absent from the request and must be left untouched by the catalog.
type UpdateAssetBody struct {
	Name         *string
	MimeType     *string
	PreviewID    *uuid.UUID
	UserMetadata map[string]any
}

// Empty reports whether the body touches no field at all.
func (b *UpdateAssetBody) Empty() bool {
	return b.Name == nil && b.MimeType == nil && b.PreviewID == nil &&
		b.UserMetadata == nil
}

func ParseUpdateAssetBody(data []byte) (*UpdateAssetBody, error) {
	var raw struct {
		Name         *string         `json:"name"`
		MimeType     *string         `json:"mime_type"`
		PreviewID    *string         `json:"preview_id"`
		UserMetadata json.RawMessage `json:"user_metadata"`
	}
	if err := unmarshalStrict(data, &raw); err != nil {
		return nil, newValidationError("body", "must be a JSON object")
	}

	body := &UpdateAssetBody{
		Name:     raw.Name,
		MimeType: raw.MimeType,
	}

	if raw.PreviewID != nil {
		// Format check only; existence is the mutation gateway's job.
		id, err := uuid.Parse(*raw.PreviewID)
		if err != nil {
			return nil, newValidationError("preview_id", "must be a valid UUID")
		}
		body.PreviewID = &id
	}

	// A literal JSON null reads as "field not provided", same as absence.
	if raw.UserMetadata != nil && string(raw.UserMetadata) != "null" {
		metadata, err := decodeMetadataObject("user_metadata", raw.UserMetadata)
		if err != nil {
			return nil, err
		}
		body.UserMetadata = metadata
	}

	if body.Empty() {
		return nil, newValidationError(
			"body",
			"at least one of name, mime_type, preview_id, user_metadata is required",
		)
	}

	return body, nil
}

// UploadAssetFromURLBody is the normalized POST /assets/from-url body.
type UploadAssetFromURLBody struct {
	URL  string
	Name string
	Tags TagList
}

func ParseUploadAssetFromURLBody(data []byte) (*UploadAssetFromURLBody, error) {
	var body UploadAssetFromURLBody
	var raw struct {
		URL  string  `json:"url"`
		Name string  `json:"name"`
		Tags TagList `json:"tags"`
	}
	if err := unmarshalStrict(data, &raw); err != nil {
		return nil, newValidationError("body", "must be a JSON object")
	}

	if strings.TrimSpace(raw.Name) == "" {
		return nil, newValidationError("name", "must not be empty")
	}

	if _, err := ParseDownloadURL("url", raw.URL); err != nil {
		return nil, err
	}

	body.URL = raw.URL
	body.Name = raw.Name
	body.Tags = raw.Tags

	return &body, nil
}

// ParseDownloadURL accepts http and https URLs only. Any other scheme fails
// before a single network access happens.
func ParseDownloadURL(field, raw string) (*url.URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, newValidationError(field, "must be a valid URL")
	}

	switch parsed.Scheme {
	case "http", "https":
	default:
		return nil, newValidationError(field, "scheme must be http or https")
	}

	if parsed.Host == "" {
		return nil, newValidationError(field, "must include a host")
	}

	return parsed, nil
}

func parseLimit(values url.Values, key string, def, max int) (int, error) {
	limit, err := parseNonNegative(values, key, def)
	if err != nil {
		return 0, err
	}
	if max > 0 && limit > max {
		limit = max
	}

	return limit, nil
}

func parseNonNegative(values url.Values, key string, def int) (int, error) {
	raw := values.Get(key)
	if raw == "" {
		return def, nil
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return 0, newValidationError(key, "must be a non-negative integer")
	}

	return parsed, nil
}

func parseBool(values url.Values, key string, def bool) (bool, error) {
	raw := values.Get(key)
	if raw == "" {
		return def, nil
	}

	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, newValidationError(key, "must be a boolean")
	}

	return parsed, nil
}
