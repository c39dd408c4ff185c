package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"catalog_service/internal/domain"
	"catalog_service/internal/schema"
	"catalog_service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	categoryNotFound     = "Category not found"
	categoryDoesNotExist = "Category does not exist"
)

type CategoryHandler struct {
	useCase usecase.CategoryUseCase
	log     *logrus.Logger
}

func NewCategoryHandler(uc usecase.CategoryUseCase, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *CategoryHandler) RegisterRoutes(router gin.IRouter) {
	categories := router.Group("/api/category")
	{
		categories.POST("", h.CreateCategory)
		categories.POST("/", h.CreateCategory)
		categories.GET("", h.ListCategories)
		categories.GET("/", h.ListCategories)
		categories.GET("/slug/:slug", h.GetCategoryBySlug)
		categories.PUT("/:id", h.UpdateCategory)
		categories.DELETE("/:id", h.DeleteCategory)
	}
}

// decodeBody reads the request body and runs it through the category schema.
func (h *CategoryHandler) decodeBody(c *gin.Context) (domain.CategoryInput, error) {
	body, err := c.GetRawData()
	if err != nil {
		return domain.CategoryInput{}, domain.NewValidationError("body", "could not read request body")
	}
	return schema.DecodeCategory(body)
}

// parseID accepts any integer. Ids outside the int4 column range, like
// non-positive ids, map to 0 and simply match nothing.
func parseID(c *gin.Context) (int, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, nil
		}
		return 0, domain.NewValidationError("id", "must be an integer")
	}
	return int(id), nil
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	logger := h.log.WithField("handler", "CreateCategory")

	input, err := h.decodeBody(c)
	if err != nil {
		logger.Warnf("Invalid category payload: %v", err)
		respondError(c, logger, err, categoryNotFound)
		return
	}

	created, err := h.useCase.CreateCategory(c.Request.Context(), input)
	if err != nil {
		respondError(c, logger, err, categoryNotFound)
		return
	}

	logger.Infof("Category created successfully: ID %d, Slug %s", created.ID, created.Slug)
	SuccessResponse(c, http.StatusCreated, created)
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	logger := h.log.WithField("handler", "ListCategories")

	categories, err := h.useCase.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, categoryNotFound)
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}

	SuccessResponse(c, http.StatusOK, categories)
}

func (h *CategoryHandler) GetCategoryBySlug(c *gin.Context) {
	logger := h.log.WithField("handler", "GetCategoryBySlug")
	slug := c.Param("slug")

	category, err := h.useCase.GetCategoryBySlug(c.Request.Context(), slug)
	if err != nil {
		respondError(c, logger, err, categoryDoesNotExist)
		return
	}

	SuccessResponse(c, http.StatusOK, category)
}

// UpdateCategory replaces every mutable field. It answers 201 on success,
// which existing clients rely on.
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	logger := h.log.WithField("handler", "UpdateCategory")

	id, err := parseID(c)
	if err != nil {
		logger.Warnf("Invalid category ID parameter for update: %s", c.Param("id"))
		respondError(c, logger, err, categoryNotFound)
		return
	}

	input, err := h.decodeBody(c)
	if err != nil {
		logger.Warnf("Invalid category payload for ID %d: %v", id, err)
		respondError(c, logger, err, categoryNotFound)
		return
	}

	updated, err := h.useCase.UpdateCategory(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, logger, err, categoryNotFound)
		return
	}

	logger.Infof("Category updated successfully: ID %d", updated.ID)
	SuccessResponse(c, http.StatusCreated, updated)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	logger := h.log.WithField("handler", "DeleteCategory")

	id, err := parseID(c)
	if err != nil {
		logger.Warnf("Invalid category ID parameter for delete: %s", c.Param("id"))
		respondError(c, logger, err, categoryNotFound)
		return
	}

	deleted, err := h.useCase.DeleteCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, logger, err, categoryNotFound)
		return
	}

	logger.Infof("Category deleted successfully: ID %d", id)
	SuccessResponse(c, http.StatusOK, deleted)
}
