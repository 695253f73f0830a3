package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"

	DefaultImageURL = "/images/default-product.jpg"
)

type Location struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

type ProductDetails struct {
	Dimensions string `json:"dimensions,omitempty"`
	Material   string `json:"material,omitempty"`
	Warranty   string `json:"warranty,omitempty"`
}

type Product struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"                          json:"id"`
	ProductID   string         `gorm:"uniqueIndex;not null"                          json:"product_id"`
	ProductName string         `gorm:"not null;index"                                json:"product_name"`
	Category    string         `gorm:"not null;index"                                json:"category"`
	Brand       string         `json:"brand,omitempty"`
	Price       float64        `gorm:"not null;check:price >= 0"                     json:"price"`
	IsInStock   bool           `gorm:"not null;index"                                json:"is_in_stock"`
	ImageURL    string         `gorm:"not null"                                      json:"image_url"`
	Location    Location       `gorm:"embedded;embeddedPrefix:location_"             json:"location"`
	Tags        []string       `gorm:"-"                                             json:"tags"`
	Details     ProductDetails `gorm:"embedded;embeddedPrefix:details_"              json:"productDetails"`
	CreatedAt   time.Time      `gorm:"index"                                         json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.ImageURL == "" {
		p.ImageURL = DefaultImageURL
	}
	return nil
}

// ProductTag keeps the ordered tag list of a product.
type ProductTag struct {
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"      json:"product_id"`
	Position  int       `gorm:"primaryKey;autoIncrement:false" json:"position"`
	Tag       string    `gorm:"not null;index"            json:"tag"`
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"  json:"username"`
	PasswordHash string    `gorm:"not null"              json:"-"`
	Role         string    `gorm:"not null"              json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleCustomer
	}
	return nil
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

type CartItem struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"          json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey;index"    json:"product_id"`
	Quantity  int       `gorm:"not null;default:1;check:quantity > 0" json:"quantity"`
	AddedAt   time.Time `gorm:"autoCreateTime"                json:"added_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// Session is the server-side half of a login: the cookie carries a signed
// token whose jti is the session ID.
type Session struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Username  string    `gorm:"not null"              json:"username"`
	Role      string    `gorm:"not null"              json:"role"`
	ExpiresAt int64     `gorm:"not null"              json:"expires_at"`
	Revoked   bool      `gorm:"default:false"         json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func All() []any {
	return []any{&Product{}, &ProductTag{}, &User{}, &CartItem{}, &Session{}}
}
