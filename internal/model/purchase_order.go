package model

import (
	"time"

	"kecdesk/internal/duedate"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseOrder states. Only open orders take part in due tracking.
const (
	POStatusOpen      = "open"
	POStatusDelivered = "delivered"
	POStatusClosed    = "closed"
)

// PurchaseOrder is a customer order under manufacture.
// DeliveryDate is a projection of OrderDate + DaysToMfg, rewritten on every save.
type PurchaseOrder struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PONumber     string          `gorm:"type:varchar(50);uniqueIndex;not null;column:po_number"`
	OrderDate    time.Time       `gorm:"type:date;not null"`
	ContactID    *uuid.UUID      `gorm:"type:uuid"`
	Contact      *Contact        `gorm:"foreignKey:ContactID"`
	CompanyName  string          `gorm:"type:varchar(200)"`
	CustomerName string          `gorm:"type:varchar(200);not null"`
	OrderValue   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DaysToMfg    int             `gorm:"not null;default:0;column:days_to_mfg"`
	// PaymentTermsDays is copied onto invoices raised against this order
	PaymentTermsDays *int     `gorm:"column:payment_terms_days"`
	DeliveryDate     time.Time `gorm:"type:date;not null"`
	Status           string    `gorm:"type:varchar(20);not null;default:'open'"`

	SalesPersonID            *uuid.UUID       `gorm:"type:uuid"`
	SalesPerson              *User            `gorm:"foreignKey:SalesPersonID"`
	SalesPercentage          *decimal.Decimal `gorm:"type:decimal(5,2)"`
	ProjectManagerID         *uuid.UUID       `gorm:"type:uuid"`
	ProjectManager           *User            `gorm:"foreignKey:ProjectManagerID"`
	ProjectManagerPercentage *decimal.Decimal `gorm:"type:decimal(5,2)"`

	Remarks   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeSave keeps the delivery date in step with its sources.
func (p *PurchaseOrder) BeforeSave(_ *gorm.DB) error {
	return p.Recompute()
}

func (p *PurchaseOrder) Recompute() error {
	d, err := duedate.DeliveryDate(p.OrderDate, p.DaysToMfg)
	if err != nil {
		return err
	}
	p.DeliveryDate = d
	if p.Status == "" {
		p.Status = POStatusOpen
	}
	return nil
}

func (p *PurchaseOrder) DueDays(today time.Time) int {
	return duedate.DueDays(p.DeliveryDate, today)
}

func (p *PurchaseOrder) IsOpen() bool { return p.Status == POStatusOpen }

// CopyCustomer takes the customer and company names from c.
func (p *PurchaseOrder) CopyCustomer(c *Contact) {
	p.ContactID = &c.ID
	p.Contact = c
	p.CustomerName = c.ContactName
	p.CompanyName = c.CompanyName()
}

// Owners returns the assigned sales person and project manager, if loaded.
func (p *PurchaseOrder) Owners() []*User {
	var out []*User
	if p.SalesPerson != nil {
		out = append(out, p.SalesPerson)
	}
	if p.ProjectManager != nil && (p.SalesPerson == nil || p.ProjectManager.ID != p.SalesPerson.ID) {
		out = append(out, p.ProjectManager)
	}
	return out
}
