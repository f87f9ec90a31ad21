package catalog

import (
	"context"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"asset-catalog/blobstore"
	"asset-catalog/metrics"
	"asset-catalog/schema"
)

// Persister is the durable store beneath the index. The catalog works with
// a nil persister; the index alone is authoritative at runtime.
type Persister interface {
	SaveAsset(ctx context.Context, asset *Asset) error
	DeleteAsset(ctx context.Context, id uuid.UUID) error
}

// Service is the operation facade over the catalog: queries delegate to
// the index, mutations go through the gateway checks first.
type Service struct {
	index   *Index
	blobs   blobstore.BlobStore
	fetcher Fetcher
	store   Persister
	metrics metrics.Metrics
}

// NewService creates a service over the given index. store may be nil for
// a purely in-memory catalog; meter may be nil to disable counting.
func NewService(
	index *Index,
	blobs blobstore.BlobStore,
	fetcher Fetcher,
	store Persister,
	meter metrics.Metrics,
) *Service {
	if meter == nil {
		meter = metrics.Noop{}
	}

	return &Service{
		index:   index,
		blobs:   blobs,
		fetcher: fetcher,
		store:   store,
		metrics: meter,
	}
}

// Index exposes the underlying index, used at boot to replay persisted
// assets.
func (s *Service) Index() *Index {
	return s.index
}

func (s *Service) ListAssets(
	_ context.Context,
	r Requester,
	query *schema.ListAssetsQuery,
) *ListResult {
	result := s.index.ListAssets(r, query)

	log.Debug().
		Strs("include_tags", query.IncludeTags).
		Strs("exclude_tags", query.ExcludeTags).
		Int("total", result.Total).
		Msg("Assets listed")
	s.metrics.IncOp("list_assets", "ok")

	return result
}

func (s *Service) TagHistogram(
	_ context.Context,
	r Requester,
	query *schema.TagsListQuery,
) []TagCount {
	entries := s.index.TagHistogram(r, query)
	s.metrics.IncOp("tag_histogram", "ok")

	return entries
}

func (s *Service) TagsRefine(
	_ context.Context,
	r Requester,
	query *schema.TagsRefineQuery,
) []TagCount {
	entries := s.index.TagsRefine(r, query)
	s.metrics.IncOp("tags_refine", "ok")

	return entries
}

// GetAsset returns a single asset. Assets invisible to the requester read
// as not found rather than forbidden, to not leak their existence.
func (s *Service) GetAsset(
	_ context.Context,
	r Requester,
	id uuid.UUID,
) (*Asset, error) {
	asset, err := s.index.Get(id)
	if err != nil {
		s.metrics.IncOp("get_asset", "error")

		return nil, wrapServiceError(err, "asset retrieval")
	}

	if !asset.VisibleTo(r, true) {
		s.metrics.IncOp("get_asset", "error")

		return nil, wrapServiceError(&NotFoundError{ID: id}, "asset retrieval")
	}

	s.metrics.IncOp("get_asset", "ok")

	return asset, nil
}

// UpdateAsset merges the supplied fields into the asset record. Fields
// omitted from the request stay untouched. The empty-body check runs again
// here even though the normalizer already enforced it.
func (s *Service) UpdateAsset(
	ctx context.Context,
	r Requester,
	id uuid.UUID,
	body *schema.UpdateAssetBody,
) (*Asset, error) {
	log.Info().
		Str("asset_id", id.String()).
		Str("owner", r.Owner).
		Msg("Asset update requested")

	if body.Empty() {
		s.metrics.IncOp("update_asset", "error")

		return nil, wrapServiceError(ErrEmptyPatch, "asset update")
	}

	current, err := s.index.Get(id)
	if err != nil {
		s.metrics.IncOp("update_asset", "error")

		return nil, wrapServiceError(err, "asset update")
	}
	if current.Owner != r.Owner {
		if !current.VisibleTo(r, true) {
			// Invisible assets read as missing.
			s.metrics.IncOp("update_asset", "error")

			return nil, wrapServiceError(&NotFoundError{ID: id}, "asset update")
		}
		s.metrics.IncOp("update_asset", "error")

		return nil, wrapServiceError(ErrNotOwner, "asset update")
	}

	updated, err := s.index.Update(id, AssetPatch{
		Name:         body.Name,
		MimeType:     body.MimeType,
		PreviewID:    body.PreviewID,
		UserMetadata: body.UserMetadata,
	})
	if err != nil {
		log.Error().Err(err).Str("asset_id", id.String()).Msg("Failed to update asset")
		s.metrics.IncOp("update_asset", "error")

		return nil, wrapServiceError(err, "asset update")
	}

	s.persist(ctx, updated)
	s.metrics.IncOp("update_asset", "ok")

	return updated, nil
}

// UploadFromURL fetches the resource, sniffs its MIME type, stores the
// payload and registers the asset. The fetch happens before any lock is
// taken; a failed fetch or payload store registers nothing.
func (s *Service) UploadFromURL(
	ctx context.Context,
	r Requester,
	body *schema.UploadAssetFromURLBody,
) (*Asset, error) {
	log.Info().
		Str("url", body.URL).
		Str("name", body.Name).
		Str("owner", r.Owner).
		Msg("URL upload requested")

	// The normalizer checked the scheme already; the gateway is the last
	// line of defense before network access.
	if _, err := schema.ParseDownloadURL("url", body.URL); err != nil {
		s.metrics.IncOp("upload_from_url", "error")

		return nil, wrapServiceError(err, "URL upload")
	}

	content, contentType, err := s.fetcher.Fetch(ctx, body.URL)
	if err != nil {
		log.Error().Err(err).Str("url", body.URL).Msg("Failed to fetch resource")
		s.metrics.IncOp("upload_from_url", "error")

		return nil, wrapServiceError(err, "URL upload")
	}

	asset := &Asset{
		ID:         uuid.New(),
		Name:       body.Name,
		MimeType:   resolveMimeType(contentType, content),
		Tags:       body.Tags,
		Owner:      r.Owner,
		Visibility: defaultVisibility(r),
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.blobs.Put(asset.ID.String(), content); err != nil {
		log.Error().Err(err).Str("asset_id", asset.ID.String()).
			Msg("Failed to store asset payload")
		s.metrics.IncOp("upload_from_url", "error")

		return nil, wrapServiceError(err, "URL upload")
	}

	if err := s.index.Insert(asset); err != nil {
		s.metrics.IncOp("upload_from_url", "error")

		return nil, wrapServiceError(err, "URL upload")
	}

	log.Info().
		Str("asset_id", asset.ID.String()).
		Str("mime_type", asset.MimeType).
		Int("size", len(content)).
		Msg("Asset ingested from URL")

	s.persist(ctx, asset)
	s.metrics.IncOp("upload_from_url", "ok")

	return asset, nil
}

// persist writes through to the durable store. Persistence failures do not
// fail the request; the index stays authoritative and the store is rebuilt
// from it on repair.
func (s *Service) persist(ctx context.Context, asset *Asset) {
	if s.store == nil {
		return
	}

	if err := s.store.SaveAsset(ctx, asset); err != nil {
		log.Error().Err(err).
			Str("asset_id", asset.ID.String()).
			Msg("Failed to persist asset")
	}
}

// resolveMimeType prefers the transport-declared content type and falls
// back to sniffing the payload.
func resolveMimeType(contentType string, content []byte) string {
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}

	return mimetype.Detect(content).String()
}

// defaultVisibility marks anonymous uploads public and owned uploads
// private.
func defaultVisibility(r Requester) Visibility {
	if r.Anonymous() {
		return VisibilityPublic
	}

	return VisibilityPrivate
}
