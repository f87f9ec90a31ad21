package httpapi

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"asset-catalog/catalog"
	"asset-catalog/schema"
)

type AssetOut struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	MimeType     string         `json:"mime_type"`
	PreviewID    *string        `json:"preview_id,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	Tags         []string       `json:"tags"`
	Visibility   string         `json:"visibility"`
	CreatedAt    time.Time      `json:"created_at"`
}

type ListAssetsResponse struct {
	Assets []AssetOut `json:"assets"`
	Total  int        `json:"total"`
}

type TagHistogramResponse struct {
	Tags []catalog.TagCount `json:"tags"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) listAssets(c *gin.Context) {
	query, err := schema.ParseListAssetsQuery(c.Request.URL.Query(), s.maxListLimit)
	if err != nil {
		writeError(c, err)

		return
	}

	result := s.service.ListAssets(
		c.Request.Context(), s.resolver.Resolve(c.Request), query,
	)

	c.JSON(http.StatusOK, ListAssetsResponse{
		Assets: assetsOut(result.Assets),
		Total:  result.Total,
	})
}

func (s *Server) getAsset(c *gin.Context) {
	id, err := parseAssetID(c)
	if err != nil {
		writeError(c, err)

		return
	}

	asset, err := s.service.GetAsset(
		c.Request.Context(), s.resolver.Resolve(c.Request), id,
	)
	if err != nil {
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, assetOut(asset))
}

func (s *Server) updateAsset(c *gin.Context) {
	id, err := parseAssetID(c)
	if err != nil {
		writeError(c, err)

		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		writeError(c, &schema.ValidationError{Field: "body", Reason: "unreadable"})

		return
	}

	body, err := schema.ParseUpdateAssetBody(payload)
	if err != nil {
		writeError(c, err)

		return
	}

	asset, err := s.service.UpdateAsset(
		c.Request.Context(), s.resolver.Resolve(c.Request), id, body,
	)
	if err != nil {
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, assetOut(asset))
}

func (s *Server) uploadFromURL(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		writeError(c, &schema.ValidationError{Field: "body", Reason: "unreadable"})

		return
	}

	body, err := schema.ParseUploadAssetFromURLBody(payload)
	if err != nil {
		writeError(c, err)

		return
	}

	asset, err := s.service.UploadFromURL(
		c.Request.Context(), s.resolver.Resolve(c.Request), body,
	)
	if err != nil {
		writeError(c, err)

		return
	}

	c.JSON(http.StatusCreated, assetOut(asset))
}

func (s *Server) listTags(c *gin.Context) {
	query, err := schema.ParseTagsListQuery(c.Request.URL.Query(), s.maxTagLimit)
	if err != nil {
		writeError(c, err)

		return
	}

	entries := s.service.TagHistogram(
		c.Request.Context(), s.resolver.Resolve(c.Request), query,
	)

	c.JSON(http.StatusOK, TagHistogramResponse{Tags: entries})
}

func (s *Server) refineTags(c *gin.Context) {
	query, err := schema.ParseTagsRefineQuery(c.Request.URL.Query(), s.maxTagLimit)
	if err != nil {
		writeError(c, err)

		return
	}

	entries := s.service.TagsRefine(
		c.Request.Context(), s.resolver.Resolve(c.Request), query,
	)

	c.JSON(http.StatusOK, TagHistogramResponse{Tags: entries})
}

func parseAssetID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, &schema.ValidationError{
			Field:  "id",
			Reason: "must be a valid UUID",
		}
	}

	return id, nil
}

// writeError maps the catalog error taxonomy onto HTTP statuses.
// Validation failures surface verbatim; internal failures are logged and
// answered generically.
func writeError(c *gin.Context, err error) {
	var validationErr *schema.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationErr.Error()})

		return
	}

	var serviceErr *catalog.ServiceError
	if errors.As(err, &serviceErr) {
		if serviceErr.Status >= http.StatusInternalServerError {
			log.Error().Err(serviceErr.Inner).Msg("Request aborted")
		}
		c.JSON(serviceErr.Status, ErrorResponse{Error: serviceErr.Message})

		return
	}

	log.Error().Err(err).Msg("Unhandled error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func assetOut(asset *catalog.Asset) AssetOut {
	out := AssetOut{
		ID:           asset.ID.String(),
		Name:         asset.Name,
		MimeType:     asset.MimeType,
		UserMetadata: asset.UserMetadata,
		Tags:         asset.Tags,
		Visibility:   string(asset.Visibility),
		CreatedAt:    asset.CreatedAt,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if asset.PreviewID != nil {
		previewID := asset.PreviewID.String()
		out.PreviewID = &previewID
	}

	return out
}

func assetsOut(assets []*catalog.Asset) []AssetOut {
	out := make([]AssetOut, 0, len(assets))
	for _, asset := range assets {
		out = append(out, assetOut(asset))
	}

	return out
}
