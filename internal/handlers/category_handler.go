package handlers

import (
	"log/slog"
	"net/http"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/YasminCastro/malucas-awards-v2/internal/services"
	"github.com/gin-gonic/gin"
)

// CategoryHandler handles category related HTTP requests
type CategoryHandler struct {
	categoryService *services.CategoryService
	log             *slog.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *services.CategoryService, log *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		log:             log,
	}
}

// ListPublic handles GET /categories
func (h *CategoryHandler) ListPublic(c *gin.Context) {
	categories, err := h.categoryService.ListPublic(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// List handles GET /admin/categories. It always reads the store.
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categoryService.ListFresh(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// Get handles GET /admin/categories/:id
func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	category, err := h.categoryService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// Create handles POST /admin/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req models.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// Update handles PUT /admin/categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	category, err := h.categoryService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// Delete handles DELETE /admin/categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.categoryService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
