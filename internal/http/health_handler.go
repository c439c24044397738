package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler reporta el estado del servicio y su configuracion visible.
type HealthHandler struct {
	service         string
	llmProvider     string
	llmModel        string
	imageModel      string
	llmConfigured   bool
	imageConfigured bool
}

func NewHealthHandler(service, llmProvider, llmModel, imageModel string, llmConfigured, imageConfigured bool) *HealthHandler {
	return &HealthHandler{
		service:         service,
		llmProvider:     llmProvider,
		llmModel:        llmModel,
		imageModel:      imageModel,
		llmConfigured:   llmConfigured,
		imageConfigured: imageConfigured,
	}
}

// Health maneja GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	body := gin.H{
		"status":           "ok",
		"service":          h.service,
		"llm_provider":     h.llmProvider,
		"llm_model":        h.llmModel,
		"image_model":      h.imageModel,
		"image_configured": h.imageConfigured,
	}
	body[h.llmProvider+"_configured"] = h.llmConfigured
	c.JSON(http.StatusOK, body)
}
