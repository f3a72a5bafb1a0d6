package handlers

import (
	"strconv"

	"gorm.io/gorm"

	"github.com/glintmarket/storefront/internal/models"
)

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// loadFullUser fetches a user with its addresses attached, the response
// shape every profile and address endpoint answers with.
func loadFullUser(db *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := db.Preload("Addresses").First(&user, id).Error; err != nil {
		return nil, err
	}
	if user.Addresses == nil {
		user.Addresses = []models.Address{}
	}
	return &user, nil
}
