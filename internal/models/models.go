package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"not null"                 json:"name"`
	Email        string    `gorm:"unique;not null"          json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Phone        string    `json:"phone"`
	Role         string    `gorm:"not null;default:user"    json:"role"`
	CreatedAt    time.Time `gorm:"autoCreateTime"           json:"created_at"`

	Addresses     []Address      `gorm:"constraint:OnDelete:CASCADE" json:"addresses"`
	Reviews       []Review       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Orders        []Order        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Notifications []Notification `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type Address struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint   `gorm:"index;not null"           json:"user_id"`
	Name       string `gorm:"not null"                 json:"name"`
	Line1      string `gorm:"not null"                 json:"line1"`
	Line2      string `json:"line2"`
	City       string `gorm:"not null"                 json:"city"`
	State      string `gorm:"not null"                 json:"state"`
	PostalCode string `gorm:"not null"                 json:"postal_code"`
	Country    string `gorm:"not null"                 json:"country"`
	IsDefault  bool   `gorm:"default:false"            json:"is_default"`
}

type Category struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"not null"                 json:"name"`
	Slug        string `gorm:"unique;not null"          json:"slug"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

type Brand struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"not null"                 json:"name"`
	Slug        string `gorm:"unique;not null"          json:"slug"`
	Logo        string `json:"logo"`
	Description string `json:"description"`
}

type Product struct {
	ID             uint              `gorm:"primaryKey;autoIncrement"   json:"id"`
	CategoryID     uint              `gorm:"index;not null"             json:"category_id"`
	BrandID        uint              `gorm:"index;not null"             json:"brand_id"`
	Name           string            `gorm:"not null"                   json:"name"`
	Slug           string            `gorm:"unique;not null"            json:"slug"`
	Description    string            `json:"description"`
	Price          float64           `gorm:"not null"                   json:"price"`
	SalePrice      *float64          `json:"sale_price"`
	Images         []string          `gorm:"type:text;serializer:json"  json:"images"`
	Tags           []string          `gorm:"type:text;serializer:json"  json:"tags"`
	Specifications map[string]string `gorm:"type:text;serializer:json"  json:"specifications"`
	InStock        bool              `gorm:"default:true"               json:"in_stock"`
	Quantity       int               `gorm:"default:0"                  json:"quantity"`
	RatingAverage  float64           `gorm:"default:0"                  json:"rating_average"`
	CreatedAt      time.Time         `gorm:"autoCreateTime"             json:"created_at"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime"             json:"updated_at"`

	Reviews []Review `gorm:"constraint:OnDelete:CASCADE" json:"reviews"`
}

// Review keeps user_name as a snapshot of the reviewer's display name at
// creation time; later edits to User.Name do not rewrite past reviews.
type Review struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index;not null"           json:"user_id"`
	ProductID uint      `gorm:"index;not null"           json:"product_id"`
	UserName  string    `gorm:"not null"                 json:"user_name"`
	Rating    float64   `gorm:"not null"                 json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `gorm:"autoCreateTime"           json:"created_at"`
}

// AddressSnapshot is the frozen copy of the shipping address stored inside an
// order. It is deliberately not a foreign key: deleting or editing the source
// Address must never change order history.
type AddressSnapshot struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func SnapshotAddress(a *Address) AddressSnapshot {
	return AddressSnapshot{
		Name:       a.Name,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

type Order struct {
	ID                      uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	UserID                  uint            `gorm:"index;not null"              json:"user_id"`
	Status                  OrderStatus     `gorm:"not null;default:processing" json:"status"`
	PaymentMethod           string          `gorm:"not null"                    json:"payment_method"`
	PaymentStatus           PaymentStatus   `gorm:"not null;default:pending"    json:"payment_status"`
	TrackingNumber          string          `json:"tracking_number"`
	Subtotal                float64         `gorm:"not null"                    json:"subtotal"`
	Tax                     float64         `gorm:"not null"                    json:"tax"`
	ShippingCost            float64         `gorm:"not null"                    json:"shipping_cost"`
	Discount                float64         `gorm:"not null"                    json:"discount"`
	Total                   float64         `gorm:"not null"                    json:"total"`
	ShippingAddressSnapshot AddressSnapshot `gorm:"type:text;serializer:json"   json:"shipping_address_snapshot"`
	CreatedAt               time.Time       `gorm:"autoCreateTime"              json:"created_at"`
	UpdatedAt               time.Time       `gorm:"autoUpdateTime"              json:"updated_at"`

	Items []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem snapshots name/price/image at purchase time. ProductID is only a
// nullable pointer back into the catalog; the product can be deleted later
// without touching the historical record.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"            json:"id"`
	OrderID   uint    `gorm:"index;not null"                      json:"order_id"`
	ProductID *uint   `gorm:"constraint:OnDelete:SET NULL"        json:"product_id"`
	Name      string  `gorm:"not null"                            json:"name"`
	Price     float64 `gorm:"not null"                            json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `gorm:"not null;default:1;check:quantity>0" json:"quantity"`
}

type Notification struct {
	ID        uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint             `gorm:"index;not null"           json:"user_id"`
	Title     string           `gorm:"not null"                 json:"title"`
	Message   string           `gorm:"not null"                 json:"message"`
	Type      NotificationType `gorm:"not null"                 json:"type"`
	IsRead    bool             `gorm:"default:false"            json:"is_read"`
	CreatedAt time.Time        `gorm:"autoCreateTime"           json:"created_at"`
}

// All returns every entity in migration order, owners before owned rows.
func All() []any {
	return []any{
		&User{},
		&Address{},
		&Category{},
		&Brand{},
		&Product{},
		&Review{},
		&Order{},
		&OrderItem{},
		&Notification{},
	}
}
