package model

import (
	"time"

	"kecdesk/internal/numbering"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Inquiry tracks a sales opportunity through the workflow statuses in
// numbering.Statuses. CreateID is assigned once; QuoteNo mirrors it and
// OpportunityID is derived from Status on every save.
type Inquiry struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreateID        string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	MonthEpoch      string    `gorm:"type:varchar(6);index;not null"`
	Status          string    `gorm:"type:varchar(20);not null;default:'Inputs'"`
	OpportunityID   string    `gorm:"type:varchar(30)"`
	QuoteNo         string    `gorm:"type:varchar(20)"`
	LeadDescription string    `gorm:"type:text;not null"`
	CompanyName     string    `gorm:"type:varchar(200)"`
	CustomerName    string    `gorm:"type:varchar(200)"`
	DateOfQuote     time.Time `gorm:"type:date;not null"`
	Remarks         *string
	// RemarksAdd holds additional-supply remarks
	RemarksAdd *string    `gorm:"column:remarks_add"`
	SalesID    *uuid.UUID `gorm:"type:uuid"`
	Sales      *User      `gorm:"foreignKey:SalesID"`
	NextDate   *time.Time `gorm:"type:date"`
	Items      []InquiryItem `gorm:"foreignKey:InquiryID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Inquiry) TableName() string { return "inquiries" }

func (i *Inquiry) BeforeSave(_ *gorm.DB) error {
	return i.Recompute()
}

// Recompute refreshes OpportunityID and QuoteNo. An unknown status fails.
func (i *Inquiry) Recompute() error {
	if i.Status == "" {
		i.Status = string(numbering.DefaultStatus)
	}
	opp, err := numbering.OpportunityID(numbering.Status(i.Status), i.CreateID)
	if err != nil {
		return err
	}
	i.OpportunityID = opp
	i.QuoteNo = i.CreateID
	return nil
}

// Total sums the item amounts.
func (i *Inquiry) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range i.Items {
		total = total.Add(it.Amount)
	}
	return total
}

// InquiryItem is a quoted line. Amount = Quantity × Price.
type InquiryItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InquiryID uuid.UUID       `gorm:"type:uuid;index;not null"`
	ItemName  string          `gorm:"type:varchar(200);not null"`
	Quantity  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (it *InquiryItem) BeforeSave(_ *gorm.DB) error {
	it.Amount = it.Quantity.Mul(it.Price)
	return nil
}
