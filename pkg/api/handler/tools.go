package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pythagonacci/trak/pkg/api/dto"
	"github.com/pythagonacci/trak/pkg/catalog"
)

// ToolsHandler serves the operation catalog in the supported wire formats.
type ToolsHandler struct {
	catalog *catalog.Catalog
}

func NewToolsHandler(cat *catalog.Catalog) *ToolsHandler {
	return &ToolsHandler{catalog: cat}
}

// List returns the catalog. ?format=openai or ?format=gemini selects a
// provider wire format; the default is the native spec list.
func (h *ToolsHandler) List(c *gin.Context) {
	switch c.Query("format") {
	case "", "native":
		c.JSON(http.StatusOK, gin.H{"tools": h.catalog.List()})
	case "openai":
		c.JSON(http.StatusOK, gin.H{"tools": h.catalog.OpenAITools()})
	case "gemini":
		c.JSON(http.StatusOK, gin.H{"tools": h.catalog.GeminiTools()})
	default:
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "unknown format; use openai or gemini"})
	}
}
