package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/glintmarket/storefront/internal/es"
	"github.com/glintmarket/storefront/internal/events"
	"github.com/glintmarket/storefront/internal/logging"
	"github.com/glintmarket/storefront/internal/models"
	"github.com/glintmarket/storefront/internal/util"
)

type ProductHandler struct {
	DB       *gorm.DB
	ES       *elasticsearch.Client
	Producer *events.Producer
}

func (h *ProductHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.Publish(ctx, events.TopicProductEvents, fmt.Sprint(event["product_id"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("publish_failed", "topic", events.TopicProductEvents, "error", err)
	}
}

// indexProduct mirrors the product into elasticsearch. Best effort: search
// lags behind the catalog rather than failing catalog writes.
func (h *ProductHandler) indexProduct(c echo.Context, p *models.Product) {
	if h.ES == nil {
		return
	}
	l := logging.FromContext(c.Request().Context())

	body, err := json.Marshal(p)
	if err != nil {
		l.Error("index_product_failed", "product_id", p.ID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.ES.Index(
		es.ProductIndex,
		bytes.NewReader(body),
		h.ES.Index.WithDocumentID(fmt.Sprint(p.ID)),
		h.ES.Index.WithContext(ctx),
	)
	if err != nil {
		l.Error("index_product_failed", "product_id", p.ID, "error", err)
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		l.Error("index_product_failed", "product_id", p.ID, "status", res.Status())
	}
}

func (h *ProductHandler) deleteFromIndex(c echo.Context, id uint) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.ES.Delete(es.ProductIndex, fmt.Sprint(id), h.ES.Delete.WithContext(ctx))
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("deindex_product_failed", "product_id", id, "error", err)
		return
	}
	res.Body.Close()
}

// ListProducts applies a stable skip/limit window ordered by id, reviews
// eagerly attached.
func (h *ProductHandler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	skip := parseIntDefault(c.QueryParam("skip"), 0)
	limit := parseIntDefault(c.QueryParam("limit"), util.DefaultLimit)
	offset, size := util.Window(skip, limit)

	var items []models.Product
	if err := h.DB.WithContext(ctx).
		Preload("Reviews").
		Order("id ASC").
		Offset(offset).
		Limit(size).
		Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list products")
	}
	for i := range items {
		if items[i].Reviews == nil {
			items[i].Reviews = []models.Review{}
		}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHandler) GetProductBySlug(c echo.Context) error {
	slug := c.Param("slug")

	var product models.Product
	err := h.DB.WithContext(c.Request().Context()).
		Preload("Reviews").
		Where("slug = ?", slug).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load product")
	}
	if product.Reviews == nil {
		product.Reviews = []models.Review{}
	}
	return c.JSON(http.StatusOK, product)
}

type productRequest struct {
	CategoryID     uint              `json:"category_id"`
	BrandID        uint              `json:"brand_id"`
	Name           string            `json:"name"`
	Slug           string            `json:"slug"`
	Description    string            `json:"description"`
	Price          float64           `json:"price"`
	SalePrice      *float64          `json:"sale_price"`
	Images         []string          `json:"images"`
	Tags           []string          `json:"tags"`
	Specifications map[string]string `json:"specifications"`
	InStock        *bool             `json:"in_stock"`
	Quantity       int               `json:"quantity"`
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" || req.Slug == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and slug are required")
	}
	if req.Price < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "price cannot be negative")
	}

	if err := h.DB.WithContext(ctx).First(&models.Category{}, req.CategoryID).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown category")
	}
	if err := h.DB.WithContext(ctx).First(&models.Brand{}, req.BrandID).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown brand")
	}

	product := models.Product{
		CategoryID:     req.CategoryID,
		BrandID:        req.BrandID,
		Name:           req.Name,
		Slug:           req.Slug,
		Description:    req.Description,
		Price:          req.Price,
		SalePrice:      req.SalePrice,
		Images:         req.Images,
		Tags:           req.Tags,
		Specifications: req.Specifications,
		InStock:        req.InStock == nil || *req.InStock,
		Quantity:       req.Quantity,
	}
	if err := h.DB.WithContext(ctx).Create(&product).Error; err != nil {
		l.Error("create_product_failed", "status", 400, "reason", "insert failed", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "slug already in use")
	}

	h.indexProduct(c, &product)
	h.publish(c, map[string]any{
		"type":       "product_created",
		"product_id": product.ID,
		"slug":       product.Slug,
	})

	l.Info("create_product_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}

	var req struct {
		Name           *string            `json:"name"`
		Description    *string            `json:"description"`
		Price          *float64           `json:"price"`
		SalePrice      *float64           `json:"sale_price"`
		Images         *[]string          `json:"images"`
		Tags           *[]string          `json:"tags"`
		Specifications *map[string]string `json:"specifications"`
		InStock        *bool              `json:"in_stock"`
		Quantity       *int               `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var product models.Product
	if err := h.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load product")
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "price cannot be negative")
		}
		product.Price = *req.Price
	}
	if req.SalePrice != nil {
		product.SalePrice = req.SalePrice
	}
	if req.Images != nil {
		product.Images = *req.Images
	}
	if req.Tags != nil {
		product.Tags = *req.Tags
	}
	if req.Specifications != nil {
		product.Specifications = *req.Specifications
	}
	if req.InStock != nil {
		product.InStock = *req.InStock
	}
	if req.Quantity != nil {
		product.Quantity = *req.Quantity
	}

	if err := h.DB.WithContext(ctx).Save(&product).Error; err != nil {
		l.Error("patch_product_failed", "status", 500, "reason", "save failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update product")
	}

	h.indexProduct(c, &product)
	h.publish(c, map[string]any{
		"type":       "product_updated",
		"product_id": product.ID,
		"slug":       product.Slug,
	})

	l.Info("patch_product_success", "product_id", product.ID)
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}

	// Order items keep their snapshots; only the catalog pointer is cleared.
	txErr := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.OrderItem{}).Where("product_id = ?", id).Update("product_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		l.Error("delete_product_failed", "status", 500, "reason", "delete failed", "error", txErr)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete product")
	}

	h.deleteFromIndex(c, uint(id))
	h.publish(c, map[string]any{
		"type":       "product_deleted",
		"product_id": id,
	})

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}
