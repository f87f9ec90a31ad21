// Package httpapi exposes the catalog operations over HTTP. It is a thin
// layer: every handler normalizes input through the schema package, calls
// one catalog operation and writes the result back as JSON.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"asset-catalog/catalog"
	"asset-catalog/metrics"
)

// RequesterResolver maps a request to the identity the catalog engine is
// queried as. Authentication itself is a collaborator concern; the catalog
// only needs the resolved owner.
type RequesterResolver interface {
	Resolve(r *http.Request) catalog.Requester
}

// HeaderResolver reads the owner identity from a request header. An empty
// or missing header resolves to the anonymous requester.
type HeaderResolver struct {
	Header string
}

func (h HeaderResolver) Resolve(r *http.Request) catalog.Requester {
	return catalog.Requester{Owner: r.Header.Get(h.Header)}
}

// DefaultResolver resolves ownership from the X-Catalog-User header.
func DefaultResolver() RequesterResolver {
	return HeaderResolver{Header: "X-Catalog-User"}
}

type Server struct {
	engine       *gin.Engine
	service      *catalog.Service
	resolver     RequesterResolver
	maxListLimit int
	maxTagLimit  int
}

// NewServer wires the catalog service into a gin engine.
func NewServer(
	service *catalog.Service,
	resolver RequesterResolver,
	maxListLimit, maxTagLimit int,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	server := &Server{
		engine:       engine,
		service:      service,
		resolver:     resolver,
		maxListLimit: maxListLimit,
		maxTagLimit:  maxTagLimit,
	}
	server.registerRoutes()

	return server
}

// Handler returns the http handler, used directly by tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	//nolint:wrapcheck // Fatal at the call site either way
	return s.engine.Run(addr)
}

func (s *Server) registerRoutes() {
	s.engine.GET("/assets", s.listAssets)
	s.engine.GET("/assets/:id", s.getAsset)
	s.engine.PATCH("/assets/:id", s.updateAsset)
	s.engine.POST("/assets/from-url", s.uploadFromURL)
	s.engine.GET("/tags", s.listTags)
	s.engine.GET("/tags/refine", s.refineTags)

	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(metrics.Handler()))
}
