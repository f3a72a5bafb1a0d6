package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/glintmarket/storefront/internal/models"
)

// CatalogHandler serves the taxonomy: categories and brands. Reads are
// public and unpaginated; the catalog is assumed small.
type CatalogHandler struct {
	DB *gorm.DB
}

func (h *CatalogHandler) ListCategories(c echo.Context) error {
	var categories []models.Category
	if err := h.DB.WithContext(c.Request().Context()).Order("id ASC").Find(&categories).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list categories")
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandler) GetCategory(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}

	var category models.Category
	if err := h.DB.WithContext(c.Request().Context()).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "category not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load category")
	}
	return c.JSON(http.StatusOK, category)
}

func (h *CatalogHandler) ListBrands(c echo.Context) error {
	var brands []models.Brand
	if err := h.DB.WithContext(c.Request().Context()).Order("id ASC").Find(&brands).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list brands")
	}
	return c.JSON(http.StatusOK, brands)
}

func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	var req struct {
		Name        string `json:"name"`
		Slug        string `json:"slug"`
		Image       string `json:"image"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" || req.Slug == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and slug are required")
	}

	category := models.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Image:       req.Image,
		Description: req.Description,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&category).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "slug already in use")
	}
	return c.JSON(http.StatusCreated, category)
}

// DeleteCategory refuses to remove a category that still has products.
// Emptying the category first is a deliberate admin step, not a silent
// cascade.
func (h *CatalogHandler) DeleteCategory(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}
	ctx := c.Request().Context()

	var count int64
	if err := h.DB.WithContext(ctx).Model(&models.Product{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot count products")
	}
	if count > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "category is not empty")
	}

	res := h.DB.WithContext(ctx).Delete(&models.Category{}, id)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete category")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "category not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHandler) CreateBrand(c echo.Context) error {
	var req struct {
		Name        string `json:"name"`
		Slug        string `json:"slug"`
		Logo        string `json:"logo"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" || req.Slug == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and slug are required")
	}

	brand := models.Brand{
		Name:        req.Name,
		Slug:        req.Slug,
		Logo:        req.Logo,
		Description: req.Description,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&brand).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "slug already in use")
	}
	return c.JSON(http.StatusCreated, brand)
}

func (h *CatalogHandler) DeleteBrand(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}
	ctx := c.Request().Context()

	var count int64
	if err := h.DB.WithContext(ctx).Model(&models.Product{}).Where("brand_id = ?", id).Count(&count).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot count products")
	}
	if count > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "brand is not empty")
	}

	res := h.DB.WithContext(ctx).Delete(&models.Brand{}, id)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete brand")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "brand not found")
	}
	return c.NoContent(http.StatusNoContent)
}
