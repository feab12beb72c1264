package model

import (
	"time"

	"kecdesk/internal/duedate"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice is raised against a purchase order once goods are received (GRN).
// InvoiceNumber is assigned once at creation and never rewritten.
// PaymentDueDate is a projection of GRNDate + PaymentTermsDays.
type Invoice struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceNumber    string          `gorm:"type:varchar(50);uniqueIndex;not null"`
	FiscalYear       string          `gorm:"type:varchar(4);index;not null"`
	InvoiceDate      time.Time       `gorm:"type:date;not null"`
	PurchaseOrderID  uuid.UUID       `gorm:"type:uuid;index;not null"`
	PurchaseOrder    *PurchaseOrder  `gorm:"foreignKey:PurchaseOrderID"`
	CustomerName     string          `gorm:"type:varchar(200)"`
	OrderValue       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	GRNDate          time.Time       `gorm:"type:date;not null;column:grn_date"`
	PaymentTermsDays int             `gorm:"not null;column:payment_terms_days"`
	PaymentDueDate   time.Time       `gorm:"type:date;not null"`
	PaidAt           *time.Time
	Remarks          *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (i *Invoice) BeforeSave(_ *gorm.DB) error {
	return i.Recompute()
}

func (i *Invoice) Recompute() error {
	d, err := duedate.PaymentDueDate(i.GRNDate, i.PaymentTermsDays)
	if err != nil {
		return err
	}
	i.PaymentDueDate = d
	return nil
}

func (i *Invoice) DueDays(today time.Time) int {
	return duedate.DueDays(i.PaymentDueDate, today)
}

func (i *Invoice) IsPaid() bool { return i.PaidAt != nil }

// Owners are the owners of the parent order.
func (i *Invoice) Owners() []*User {
	if i.PurchaseOrder == nil {
		return nil
	}
	return i.PurchaseOrder.Owners()
}
