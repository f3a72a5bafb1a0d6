package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/glintmarket/storefront/internal/middleware/auth"
	"github.com/glintmarket/storefront/internal/models"
)

// AddressHandler mutates the caller's own addresses. Every endpoint answers
// with the full updated user so a client refreshes its address list in one
// round trip. Acting on someone else's address is a plain 404; the response
// never confirms that the row exists.
type AddressHandler struct {
	DB *gorm.DB
}

type addressRequest struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	IsDefault  bool   `json:"is_default"`
}

func (r *addressRequest) validate() error {
	if r.Name == "" || r.Line1 == "" || r.City == "" || r.State == "" || r.PostalCode == "" || r.Country == "" {
		return errors.New("name, line1, city, state, postal_code and country are required")
	}
	return nil
}

// clearOtherDefaults keeps at most one canonical default address per user.
// The column carries no unique constraint; this is the convention that makes
// "the default address" well defined.
func clearOtherDefaults(tx *gorm.DB, userID, keepID uint) error {
	return tx.Model(&models.Address{}).
		Where("user_id = ? AND id <> ?", userID, keepID).
		Update("is_default", false).Error
}

func (h *AddressHandler) CreateAddress(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.CurrentUser(c)

	var req addressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	address := models.Address{
		UserID:     user.ID,
		Name:       req.Name,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		IsDefault:  req.IsDefault,
	}

	txErr := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&address).Error; err != nil {
			return err
		}
		if address.IsDefault {
			return clearOtherDefaults(tx, user.ID, address.ID)
		}
		return nil
	})
	if txErr != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create address")
	}

	full, err := loadFullUser(h.DB.WithContext(ctx), user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load user")
	}
	return c.JSON(http.StatusOK, full)
}

func (h *AddressHandler) UpdateAddress(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.CurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}

	var req addressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	txErr := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var address models.Address
		if err := tx.Where("id = ? AND user_id = ?", id, user.ID).First(&address).Error; err != nil {
			return err
		}

		address.Name = req.Name
		address.Line1 = req.Line1
		address.Line2 = req.Line2
		address.City = req.City
		address.State = req.State
		address.PostalCode = req.PostalCode
		address.Country = req.Country
		address.IsDefault = req.IsDefault

		if err := tx.Save(&address).Error; err != nil {
			return err
		}
		if address.IsDefault {
			return clearOtherDefaults(tx, user.ID, address.ID)
		}
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "address not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update address")
	}

	full, err := loadFullUser(h.DB.WithContext(ctx), user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load user")
	}
	return c.JSON(http.StatusOK, full)
}

func (h *AddressHandler) DeleteAddress(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.CurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}

	res := h.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.Address{})
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete address")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "address not found")
	}

	full, err := loadFullUser(h.DB.WithContext(ctx), user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load user")
	}
	return c.JSON(http.StatusOK, full)
}
