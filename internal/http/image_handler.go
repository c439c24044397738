package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ai-tutor/internal/imagegen"
)

// ImageHandler expone la generacion directa de imagenes.
type ImageHandler struct {
	logger *zap.Logger
	images imagegen.Generator
}

func NewImageHandler(logger *zap.Logger, images imagegen.Generator) *ImageHandler {
	return &ImageHandler{logger: logger, images: images}
}

// GenerateImage maneja POST /generate-image.
func (h *ImageHandler) GenerateImage(c *gin.Context) {
	var req struct {
		Prompt         string  `json:"prompt" binding:"required"`
		NegativePrompt string  `json:"negative_prompt"`
		Width          int     `json:"width"`
		Height         int     `json:"height"`
		Steps          int     `json:"steps"`
		GuidanceScale  float64 `json:"guidance_scale"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid generate image request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if h.images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image generation is not configured"})
		return
	}

	result, err := h.images.GenerateImage(c.Request.Context(), imagegen.Params{
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Width:          req.Width,
		Height:         req.Height,
		Steps:          req.Steps,
		GuidanceScale:  req.GuidanceScale,
	})
	if err != nil {
		var apiErr *imagegen.APIError
		if errors.As(err, &apiErr) && apiErr.RateLimited() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "image backend rate limited, retry shortly"})
			return
		}
		h.logger.Error("generate image failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "image generation failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}
