package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/glintmarket/storefront/internal/events"
	"github.com/glintmarket/storefront/internal/logging"
	"github.com/glintmarket/storefront/internal/middleware/auth"
	"github.com/glintmarket/storefront/internal/models"
	"github.com/glintmarket/storefront/internal/util"
)

// Checkout pricing. Item prices are snapshotted at catalog price; the order
// discount aggregates sale-price savings so that
// total = subtotal + tax + shipping_cost - discount holds exactly.
const (
	taxRate               = 0.08
	shippingFee           = 9.90
	freeShippingThreshold = 100.0
)

type OrderHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
}

func (h *OrderHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.Publish(ctx, events.TopicOrderEvents, fmt.Sprint(event["order_id"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("publish_failed", "topic", events.TopicOrderEvents, "error", err)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var errInsufficientStock = errors.New("insufficient stock")

// CreateOrder turns a list of product ids and quantities into an immutable
// order. Product name/price/image and the shipping address are snapshotted,
// stock is decremented, and the order plus all its items are written in one
// transaction; a failure anywhere leaves nothing behind.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.CurrentUser(c)
	l := logging.FromContext(ctx).With("handler", "order.create", "user_id", user.ID)

	var req struct {
		Items []struct {
			ProductID uint `json:"product_id"`
			Quantity  int  `json:"quantity"`
		} `json:"items"`
		AddressID     uint   `json:"address_id"`
		PaymentMethod string `json:"payment_method"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if len(req.Items) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "order needs at least one item")
	}
	if req.PaymentMethod == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "payment_method is required")
	}
	for _, it := range req.Items {
		if it.Quantity < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "item quantity must be positive")
		}
	}

	var order models.Order
	txErr := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var address models.Address
		addrQuery := tx.Where("user_id = ?", user.ID)
		if req.AddressID != 0 {
			addrQuery = addrQuery.Where("id = ?", req.AddressID)
		} else {
			addrQuery = addrQuery.Where("is_default = ?", true)
		}
		if err := addrQuery.First(&address).Error; err != nil {
			return err
		}

		var (
			subtotal float64
			discount float64
			items    []models.OrderItem
		)
		for _, it := range req.Items {
			var product models.Product
			if err := tx.First(&product, it.ProductID).Error; err != nil {
				return err
			}
			if product.Quantity < it.Quantity {
				return errInsufficientStock
			}

			subtotal += product.Price * float64(it.Quantity)
			if product.SalePrice != nil {
				discount += (product.Price - *product.SalePrice) * float64(it.Quantity)
			}

			image := ""
			if len(product.Images) > 0 {
				image = product.Images[0]
			}
			productID := product.ID
			items = append(items, models.OrderItem{
				ProductID: &productID,
				Name:      product.Name,
				Price:     product.Price,
				Image:     image,
				Quantity:  it.Quantity,
			})

			product.Quantity -= it.Quantity
			if product.Quantity == 0 {
				product.InStock = false
			}
			if err := tx.Save(&product).Error; err != nil {
				return err
			}
		}

		subtotal = round2(subtotal)
		discount = round2(discount)
		tax := round2((subtotal - discount) * taxRate)
		shipping := shippingFee
		if subtotal-discount >= freeShippingThreshold {
			shipping = 0
		}
		total := round2(subtotal + tax + shipping - discount)

		order = models.Order{
			UserID:                  user.ID,
			Status:                  models.OrderProcessing,
			PaymentMethod:           req.PaymentMethod,
			PaymentStatus:           models.PaymentPending,
			Subtotal:                subtotal,
			Tax:                     tax,
			ShippingCost:            shipping,
			Discount:                discount,
			Total:                   total,
			ShippingAddressSnapshot: models.SnapshotAddress(&address),
			Items:                   items,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		notification := models.Notification{
			UserID:  user.ID,
			Title:   "Order placed",
			Message: fmt.Sprintf("Your order #%d has been placed and is being processed.", order.ID),
			Type:    models.NotificationOrder,
		}
		return tx.Create(&notification).Error
	})
	if txErr != nil {
		switch {
		case errors.Is(txErr, gorm.ErrRecordNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "product or address not found")
		case errors.Is(txErr, errInsufficientStock):
			return echo.NewHTTPError(http.StatusBadRequest, "insufficient stock")
		default:
			l.Error("create_order_failed", "status", 500, "error", txErr)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot create order")
		}
	}

	h.publish(c, map[string]any{
		"type":     "order_created",
		"order_id": order.ID,
		"user_id":  user.ID,
		"total":    order.Total,
	})

	l.Info("create_order_success", "order_id", order.ID, "total", order.Total)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	skip := parseIntDefault(c.QueryParam("skip"), 0)
	limit := parseIntDefault(c.QueryParam("limit"), util.DefaultLimit)
	offset, size := util.Window(skip, limit)

	var orders []models.Order
	if err := h.DB.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC").
		Offset(offset).
		Limit(size).
		Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list orders")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) ListUserOrders(c echo.Context) error {
	ctx := c.Request().Context()
	caller := auth.CurrentUser(c)

	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is not an integer")
	}
	if caller.ID != uint(userID) && !caller.IsAdmin() {
		return echo.NewHTTPError(http.StatusForbidden, "admin access required")
	}

	skip := parseIntDefault(c.QueryParam("skip"), 0)
	limit := parseIntDefault(c.QueryParam("limit"), util.DefaultLimit)
	offset, size := util.Window(skip, limit)

	var orders []models.Order
	if err := h.DB.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(size).
		Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list orders")
	}
	return c.JSON(http.StatusOK, orders)
}

// UpdateOrder lets fulfillment move status, payment_status and
// tracking_number. Everything else about an order is immutable.
func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}

	var req struct {
		Status         *models.OrderStatus   `json:"status"`
		PaymentStatus  *models.PaymentStatus `json:"payment_status"`
		TrackingNumber *string               `json:"tracking_number"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Status != nil && !req.Status.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown order status")
	}
	if req.PaymentStatus != nil && !req.PaymentStatus.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown payment status")
	}

	var order models.Order
	if err := h.DB.WithContext(ctx).Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load order")
	}

	if req.Status != nil {
		order.Status = *req.Status
	}
	if req.PaymentStatus != nil {
		order.PaymentStatus = *req.PaymentStatus
	}
	if req.TrackingNumber != nil {
		order.TrackingNumber = *req.TrackingNumber
	}

	if err := h.DB.WithContext(ctx).Save(&order).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update order")
	}

	h.publish(c, map[string]any{
		"type":     "order_updated",
		"order_id": order.ID,
		"status":   order.Status,
	})
	return c.JSON(http.StatusOK, order)
}
