package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/glintmarket/storefront/internal/events"
	"github.com/glintmarket/storefront/internal/hash"
	"github.com/glintmarket/storefront/internal/logging"
	"github.com/glintmarket/storefront/internal/middleware/auth"
	"github.com/glintmarket/storefront/internal/models"
	"github.com/glintmarket/storefront/internal/service/token"
)

type AuthHandler struct {
	DB       *gorm.DB
	Tokens   *token.Service
	Producer *events.Producer
}

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (h *AuthHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.Publish(ctx, events.TopicUserEvents, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("publish_failed", "topic", events.TopicUserEvents, "error", err)
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name, email and password are required")
	}

	var existing models.User
	err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "email already registered")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("register_failed", "status", 500, "reason", "lookup failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot check email")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "hashing failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot hash password")
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: pwHash,
		Phone:        req.Phone,
		Role:         models.RoleUser,
	}
	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		// The unique index is the backstop for concurrent registrations.
		return echo.NewHTTPError(http.StatusBadRequest, "email already registered")
	}

	signed, err := h.Tokens.Issue(user.ID)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "token signing failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot issue token")
	}

	h.publish(c, fmt.Sprint(user.ID), map[string]any{
		"type":    "user_registered",
		"user_id": user.ID,
	})

	user.Addresses = []models.Address{}
	l.Info("register_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, authResponse{User: &user, Token: signed})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	// Unknown email and wrong password answer identically.
	var user models.User
	if err := h.DB.WithContext(ctx).Preload("Addresses").Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		l.Error("login_failed", "status", 500, "reason", "lookup failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load user")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	signed, err := h.Tokens.Issue(user.ID)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "token signing failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot issue token")
	}

	h.publish(c, fmt.Sprint(user.ID), map[string]any{
		"type":    "user_logged_in",
		"user_id": user.ID,
	})

	if user.Addresses == nil {
		user.Addresses = []models.Address{}
	}
	l.Info("login_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, authResponse{User: &user, Token: signed})
}

func (h *AuthHandler) Me(c echo.Context) error {
	user, err := loadFullUser(h.DB.WithContext(c.Request().Context()), auth.CurrentUser(c).ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load user")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.CurrentUser(c)

	var req struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
		Phone *string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		var other models.User
		err := h.DB.WithContext(ctx).Where("email = ? AND id <> ?", *req.Email, user.ID).First(&other).Error
		if err == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "email already in use")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot check email")
		}
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}

	if err := h.DB.WithContext(ctx).Save(user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update user")
	}

	full, err := loadFullUser(h.DB.WithContext(ctx), user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load user")
	}
	return c.JSON(http.StatusOK, full)
}
