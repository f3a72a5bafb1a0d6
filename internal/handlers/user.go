package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/glintmarket/storefront/internal/models"
	"github.com/glintmarket/storefront/internal/util"
)

// UserHandler is the admin-only directory. These routes are registered
// behind RequireAdmin; the older service left them open.
type UserHandler struct {
	DB *gorm.DB
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()

	skip := parseIntDefault(c.QueryParam("skip"), 0)
	limit := parseIntDefault(c.QueryParam("limit"), util.DefaultLimit)
	offset, size := util.Window(skip, limit)

	var users []models.User
	if err := h.DB.WithContext(ctx).
		Preload("Addresses").
		Order("id ASC").
		Offset(offset).
		Limit(size).
		Find(&users).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list users")
	}
	for i := range users {
		if users[i].Addresses == nil {
			users[i].Addresses = []models.Address{}
		}
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}

	user, err := loadFullUser(h.DB.WithContext(c.Request().Context()), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load user")
	}
	return c.JSON(http.StatusOK, user)
}
