package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"listingopt/internal/model"
)

type ListingService interface {
	ResolveListing(ctx context.Context, asin string) (*model.Listing, error)
	OptimizeListing(ctx context.Context, asin string, content model.ListingContent) (*model.OptimizedListing, error)
	Health(ctx context.Context) error
}

type ListingHandler struct {
	service ListingService
}

func NewListingHandler(service ListingService) *ListingHandler {
	return &ListingHandler{service: service}
}

// RegisterRoutes mounts the listing routes, the legacy /api aliases and the
// health check. Unsupported methods on a known path answer 405.
func RegisterRoutes(r *gin.Engine, h *ListingHandler) {
	r.HandleMethodNotAllowed = true
	r.NoMethod(h.MethodNotAllowed)

	r.GET("/listing/optimize", h.MethodNotAllowed)
	r.POST("/listing/optimize", h.OptimizeListing)
	r.GET("/listing/:id", h.GetListing)

	r.GET("/api/product/:asin", h.GetListing)
	r.POST("/api/optimize", h.OptimizeListing)

	r.GET("/health", h.GetHealth)
}

func (h *ListingHandler) GetListing(c *gin.Context) {
	asin := normalizeASIN(c.Param("id"))
	if asin == "" {
		asin = normalizeASIN(c.Param("asin"))
	}

	listing, err := h.service.ResolveListing(c.Request.Context(), asin)
	if err != nil {
		writeError(c, err, "error resolving listing", "asin", asin)
		return
	}

	res := ListingResponse{
		Original: OriginalResponse{
			Title:       listing.Original.Title,
			Bullets:     listing.Original.Bullets,
			Description: listing.Original.Description,
		},
	}
	if listing.Optimized != nil {
		optimized := toOptimizedResponse(listing.Optimized)
		res.Optimized = &optimized
	}

	c.JSON(http.StatusOK, res)
}

func (h *ListingHandler) OptimizeListing(c *gin.Context) {
	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("invalid optimize request body", "error", err, "request_id", requestID(c))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing fields"})
		return
	}

	asin := normalizeASIN(req.ID)
	if asin == "" {
		asin = normalizeASIN(req.ASIN)
	}

	optimized, err := h.service.OptimizeListing(c.Request.Context(), asin, model.ListingContent{
		Title:       req.Title,
		Bullets:     req.Bullets,
		Description: req.Description,
	})
	if err != nil {
		writeError(c, err, "error optimizing listing", "asin", asin)
		return
	}

	c.JSON(http.StatusOK, OptimizeResponse{Optimized: toOptimizedResponse(optimized)})
}

func (h *ListingHandler) MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
}

func (h *ListingHandler) GetHealth(c *gin.Context) {
	if err := h.service.Health(c.Request.Context()); err != nil {
		slog.Error("store health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"store":  "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"store":  "connected",
	})
}

func toOptimizedResponse(o *model.OptimizedListing) OptimizedResponse {
	return OptimizedResponse{
		OptTitle:       o.OptTitle,
		OptBullets:     o.OptBullets,
		OptDescription: o.OptDescription,
		Keywords:       o.Keywords,
	}
}

func normalizeASIN(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// writeError maps an error kind to its status and public message. The full
// error only goes to the log.
func writeError(c *gin.Context, err error, msg string, args ...any) {
	status, public := http.StatusInternalServerError, "Internal server error"
	switch {
	case errors.Is(err, model.ErrValidation):
		status, public = http.StatusBadRequest, "Missing fields"
	case errors.Is(err, model.ErrOptimizationParse):
		public = "Could not parse optimization response"
	case errors.Is(err, model.ErrUpstreamTransport):
		public = "Upstream service error"
	case errors.Is(err, model.ErrPersistence):
		public = "Database error"
	}

	args = append(args, "error", err, "status", status, "request_id", requestID(c))
	if status >= http.StatusInternalServerError {
		slog.Error(msg, args...)
	} else {
		slog.Warn(msg, args...)
	}

	c.JSON(status, ErrorResponse{Error: public})
}
