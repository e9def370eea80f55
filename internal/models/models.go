package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type User struct {
	ID               string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email            string         `gorm:"uniqueIndex;not null"        json:"email"`
	Name             string         `gorm:"not null"                    json:"name"`
	Password         string         `gorm:"not null"                    json:"-"`
	Permissions      pq.StringArray `gorm:"type:text;not null"          json:"permissions"`
	ResetToken       *string        `gorm:"index"                       json:"-"`
	ResetTokenExpiry *int64         `                                   json:"-"`
	CreatedAt        time.Time      `                                   json:"created_at"`
	UpdatedAt        time.Time      `                                   json:"updated_at"`
}

type Item struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title       string    `gorm:"not null"                    json:"title"`
	Description string    `gorm:"not null"                    json:"description"`
	Image       string    `                                   json:"image"`
	LargeImage  string    `                                   json:"large_image"`
	Price       int64     `gorm:"not null;check:price>=0"     json:"price"`
	UserID      string    `gorm:"index;not null"              json:"user_id"`
	CreatedAt   time.Time `                                   json:"created_at"`
	UpdatedAt   time.Time `                                   json:"updated_at"`
}

type CartItem struct {
	ID       string `gorm:"primaryKey;type:varchar(36)"           json:"id"`
	UserID   string `gorm:"uniqueIndex:idx_user_item;not null"    json:"user_id"`
	ItemID   string `gorm:"uniqueIndex:idx_user_item;not null"    json:"item_id"`
	Quantity uint   `gorm:"default:1;check:quantity>0"            json:"quantity"`
	Item     *Item  `gorm:"foreignKey:ItemID"                     json:"item,omitempty"`
}

const (
	OrderStatusPending = "PENDING"
	OrderStatusPaid    = "PAID"
	OrderStatusFailed  = "FAILED"
)

type Order struct {
	ID        string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string      `gorm:"index;not null"              json:"user_id"`
	Total     int64       `gorm:"not null"                    json:"total"`
	Currency  string      `gorm:"not null"                    json:"currency"`
	Charge    string      `                                   json:"charge"`
	Status    string      `gorm:"index;not null"              json:"status"`
	Items     []OrderItem `gorm:"foreignKey:OrderID"          json:"items"`
	CreatedAt time.Time   `                                   json:"created_at"`
	UpdatedAt time.Time   `                                   json:"updated_at"`
}

// OrderItem is a snapshot of an item at checkout; it never follows later
// edits to the item.
type OrderItem struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"   json:"id"`
	OrderID     string `gorm:"index;not null"                json:"order_id"`
	UserID      string `gorm:"index;not null"                json:"user_id"`
	Title       string `gorm:"not null"                      json:"title"`
	Description string `gorm:"not null"                      json:"description"`
	Image       string `                                     json:"image"`
	LargeImage  string `                                     json:"large_image"`
	Price       int64  `gorm:"not null"                      json:"price"`
	Quantity    uint   `gorm:"default:1;check:quantity>0"    json:"quantity"`
}

type RevokedSession struct {
	JTI       string    `gorm:"primaryKey;type:varchar(36)" json:"jti"`
	UserID    string    `gorm:"index;not null"              json:"user_id"`
	RevokedAt time.Time `gorm:"not null"                    json:"revoked_at"`
}

func All() []any {
	return []any{&User{}, &Item{}, &CartItem{}, &Order{}, &OrderItem{}, &RevokedSession{}}
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func (u *User) BeforeCreate(tx *gorm.DB) error      { newID(&u.ID); return nil }
func (i *Item) BeforeCreate(tx *gorm.DB) error      { newID(&i.ID); return nil }
func (c *CartItem) BeforeCreate(tx *gorm.DB) error  { newID(&c.ID); return nil }
func (o *Order) BeforeCreate(tx *gorm.DB) error     { newID(&o.ID); return nil }
func (o *OrderItem) BeforeCreate(tx *gorm.DB) error { newID(&o.ID); return nil }

func (CartItem) TableName() string {
	return "cart_items"
}
