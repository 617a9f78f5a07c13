package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// The structs below describe the normalised schema generation. Older
// deployments name the same columns differently; queries against them go
// through the schema package instead of these models.

type Category struct {
	CategoryID   int64  `gorm:"primaryKey;autoIncrement"  json:"category_id"`
	Name         string `gorm:"size:100;not null"         json:"name"`
	CategoryName string `gorm:"size:100;not null"         json:"category_name"`
	Description  string `json:"description"`
}

func (Category) TableName() string { return "categories" }

type Product struct {
	ProductID    int64           `gorm:"primaryKey;autoIncrement"   json:"product_id"`
	CategoryID   *int64          `gorm:"index"                      json:"category_id"`
	Category     *Category       `gorm:"foreignKey:CategoryID;references:CategoryID;constraint:OnDelete:SET NULL" json:"-"`
	ProductCode  *string         `gorm:"size:50"                    json:"product_code"`
	ProductName  string          `gorm:"size:100;not null"          json:"product_name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"price"`
	PriceRegular decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"price_regular"`
	PriceLarge   decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"price_large"`
	ImagePath    *string         `gorm:"size:255"                   json:"image_path"`
}

func (Product) TableName() string { return "products" }

type Inventory struct {
	InventoryID  int64    `gorm:"primaryKey;autoIncrement" json:"inventory_id"`
	ProductID    int64    `gorm:"not null;index"           json:"product_id"`
	Product      *Product `gorm:"foreignKey:ProductID;references:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	CurrentStock int      `gorm:"not null;default:0"       json:"current_stock"`
	MinimumStock int      `gorm:"not null;default:0"       json:"minimum_stock"`
	ReorderPoint int      `gorm:"not null;default:0"       json:"reorder_point"`
	Quantity     int      `gorm:"not null;default:0"       json:"quantity"`
}

func (Inventory) TableName() string { return "inventory" }

type Customer struct {
	CustomerID    int64           `gorm:"primaryKey;autoIncrement"          json:"customer_id"`
	CustomerCode  string          `gorm:"size:32;uniqueIndex;not null"      json:"customer_code"`
	Username      string          `gorm:"size:50;uniqueIndex;not null"      json:"username"`
	Email         string          `gorm:"size:100;uniqueIndex;not null"     json:"email"`
	PasswordHash  string          `gorm:"size:255;not null"                 json:"-"`
	FirstName     string          `gorm:"size:100"                          json:"first_name"`
	LastName      string          `gorm:"size:100"                          json:"last_name"`
	IsActive      bool            `gorm:"not null;default:true"             json:"is_active"`
	LoyaltyPoints int             `gorm:"not null;default:0"                json:"loyalty_points"`
	TotalSpent    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_spent"`
}

func (Customer) TableName() string { return "customers" }

// User is the staff or system account a sale is attributed to.
type User struct {
	UserID       int64  `gorm:"primaryKey;autoIncrement"      json:"user_id"`
	Username     string `gorm:"size:50;uniqueIndex;not null"  json:"username"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null"             json:"-"`
	UserType     string `gorm:"size:32;not null;default:staff" json:"user_type"`
	FirstName    string `gorm:"size:100"                      json:"first_name"`
	LastName     string `gorm:"size:100"                      json:"last_name"`
	IsActive     bool   `gorm:"not null;default:true"         json:"is_active"`
}

func (User) TableName() string { return "users" }

type Sale struct {
	SaleID             int64           `gorm:"primaryKey;autoIncrement"       json:"sale_id"`
	CustomerID         *int64          `gorm:"index"                          json:"customer_id"`
	Customer           *Customer       `gorm:"foreignKey:CustomerID;references:CustomerID;constraint:OnDelete:SET NULL" json:"-"`
	UserID             *int64          `gorm:"index"                          json:"user_id"`
	User               *User           `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:SET NULL" json:"-"`
	TotalAmount        decimal.Decimal `gorm:"type:decimal(10,2);not null"    json:"total_amount"`
	PaymentMethod      string          `gorm:"size:20;not null;default:cash"  json:"payment_method"`
	Status             string          `gorm:"size:20;not null;default:pending" json:"status"`
	ProofOfPaymentPath *string         `gorm:"size:255"                       json:"proof_of_payment_path"`
	SaleDate           time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"sale_date"`
	Items              []SaleItem      `gorm:"foreignKey:SaleID;references:SaleID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Sale) TableName() string { return "sales" }

// SaleItem snapshots the price charged at the time of sale.
type SaleItem struct {
	SaleItemID int64           `gorm:"primaryKey;autoIncrement"     json:"sale_item_id"`
	SaleID     int64           `gorm:"not null;index"               json:"sale_id"`
	ProductID  *int64          `gorm:"index"                        json:"product_id"`
	Product    *Product        `gorm:"foreignKey:ProductID;references:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
	Quantity   int             `gorm:"not null;check:quantity>0"    json:"quantity"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null"  json:"price"`
}

func (SaleItem) TableName() string { return "sale_items" }

// All returns the models in dependency order for AutoMigrate.
func All() []any {
	return []any{
		&Category{},
		&Product{},
		&Inventory{},
		&Customer{},
		&User{},
		&Sale{},
		&SaleItem{},
	}
}
