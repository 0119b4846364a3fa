package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID             uuid.UUID
	Email          string
	HashedPassword string
	FullName       string
	Role           string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Category struct {
	ID        int64
	Name      string
	ImageUrl  pgtype.Text
	SortOrder int32
	IsActive  bool
	CreatedAt time.Time
}

type MenuItem struct {
	ID          int64
	CategoryID  int64
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	ImageUrl    pgtype.Text
	InStock     bool
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Supplement struct {
	ID         int64
	CategoryID int64
	Name       string
	Price      pgtype.Numeric
	IsActive   bool
	CreatedAt  time.Time
}

type Breakfast struct {
	ID          int64
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	ImageUrl    pgtype.Text
	InStock     bool
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type BreakfastOption struct {
	ID          int64
	BreakfastID int64
	GroupName   pgtype.Text
	Name        string
	Price       pgtype.Numeric
	IsActive    bool
	CreatedAt   time.Time
}

type Banner struct {
	ID        int64
	Title     pgtype.Text
	ImageUrl  string
	LinkUrl   pgtype.Text
	SortOrder int32
	StartsAt  pgtype.Timestamptz
	EndsAt    pgtype.Timestamptz
	IsActive  bool
	CreatedAt time.Time
}

type Promotion struct {
	ID         int64
	MenuItemID int64
	Name       string
	PromoPrice pgtype.Numeric
	StartsAt   pgtype.Timestamptz
	EndsAt     pgtype.Timestamptz
	IsActive   bool
	CreatedAt  time.Time
}

type Order struct {
	ID           uuid.UUID
	OrderNumber  string
	OrderSeq     int64
	SessionID    pgtype.Text
	CustomerName pgtype.Text
	OrderType    string
	TableNumber  pgtype.Text
	Notes        pgtype.Text
	Status       string
	TotalAmount  pgtype.Numeric
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type OrderItem struct {
	ID              uuid.UUID
	OrderID         uuid.UUID
	MenuItemID      int64
	ItemName        string
	UnitPrice       pgtype.Numeric
	Quantity        int32
	SupplementID    pgtype.Int8
	SupplementName  pgtype.Text
	SupplementPrice pgtype.Numeric
	ImageUrl        pgtype.Text
	CreatedAt       time.Time
}

type OrderBreakfast struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	BreakfastID   int64
	BreakfastName string
	UnitPrice     pgtype.Numeric
	Quantity      int32
	ImageUrl      pgtype.Text
	CreatedAt     time.Time
}

type OrderBreakfastOption struct {
	ID               int64
	OrderBreakfastID uuid.UUID
	OptionID         int64
	OptionName       string
	OptionPrice      pgtype.Numeric
	CreatedAt        time.Time
}
