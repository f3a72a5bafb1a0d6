package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/glintmarket/storefront/internal/middleware/auth"
	"github.com/glintmarket/storefront/internal/models"
	"github.com/glintmarket/storefront/internal/util"
)

type NotificationHandler struct {
	DB *gorm.DB
}

func (h *NotificationHandler) ListUserNotifications(c echo.Context) error {
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

	var notifications []models.Notification
	if err := h.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(size).
		Find(&notifications).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list notifications")
	}
	return c.JSON(http.StatusOK, notifications)
}

// MarkRead flips is_read on one of the caller's notifications. Someone
// else's notification is a 404, same as a missing one.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	ctx := c.Request().Context()
	caller := auth.CurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}

	res := h.DB.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, caller.ID).
		Update("is_read", true)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update notification")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "notification not found")
	}

	var notification models.Notification
	if err := h.DB.WithContext(ctx).First(&notification, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load notification")
	}
	return c.JSON(http.StatusOK, notification)
}
