package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CreateInvoiceRequest raises an invoice against a purchase order. The
// invoice number is allocated by the server; customer, value and payment
// terms come from the order.
type CreateInvoiceRequest struct {
	PurchaseOrderID string  `json:"purchase_order_id" validate:"required,uuid"`
	InvoiceDate     string  `json:"invoice_date"      validate:"required,datetime=2006-01-02"`
	GRNDate         string  `json:"grn_date"          validate:"required,datetime=2006-01-02"`
	Remarks         *string `json:"remarks"`
}

// UpdateInvoiceRequest never touches the invoice number.
type UpdateInvoiceRequest struct {
	GRNDate          *string `json:"grn_date"           validate:"omitempty,datetime=2006-01-02"`
	PaymentTermsDays *int    `json:"payment_terms_days" validate:"omitempty,min=0"`
	Remarks          *string `json:"remarks"`
}

type MarkInvoicePaidRequest struct {
	PaidOn string `json:"paid_on" validate:"omitempty,datetime=2006-01-02"`
}

// ReserveInvoiceNumberRequest picks the fiscal year from Date, defaulting to today.
type ReserveInvoiceNumberRequest struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type InvoiceFilter struct {
	Search     string `form:"search"`
	Paid       string `form:"paid" validate:"omitempty,oneof=true false"`
	FiscalYear string `form:"fiscal_year" validate:"omitempty,len=4,numeric"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type InvoiceResponse struct {
	ID               string          `json:"id"`
	InvoiceNumber    string          `json:"invoice_number"`
	FiscalYear       string          `json:"fiscal_year"`
	InvoiceDate      string          `json:"invoice_date"`
	PurchaseOrderID  string          `json:"purchase_order_id"`
	PONumber         string          `json:"po_number,omitempty"`
	CustomerName     string          `json:"customer_name"`
	OrderValue       decimal.Decimal `json:"order_value"`
	GRNDate          string          `json:"grn_date"`
	PaymentTermsDays int             `json:"payment_terms_days"`
	PaymentDueDate   string          `json:"payment_due_date"`
	DueDays          int             `json:"due_days"`
	PaymentStatus    string          `json:"payment_status"`
	DueText          string          `json:"due_text"`
	PaidAt           *string         `json:"paid_at"`
	Remarks          *string         `json:"remarks"`
}

type InvoiceListResponse struct {
	Data []InvoiceResponse `json:"data"`
	ListMeta
}

type ReservedNumberResponse struct {
	Number string `json:"number"`
	Epoch  string `json:"epoch"`
}
