package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateInquiryRequest struct {
	LeadDescription string  `json:"lead_description" validate:"required"`
	CompanyName     string  `json:"company_name"     validate:"max=200"`
	CustomerName    string  `json:"customer_name"    validate:"max=200"`
	DateOfQuote     string  `json:"date_of_quote"    validate:"omitempty,datetime=2006-01-02"`
	Status          string  `json:"status"`
	SalesID         *string `json:"sales_id"         validate:"omitempty,uuid"`
	NextDate        *string `json:"next_date"        validate:"omitempty,datetime=2006-01-02"`
	Remarks         *string `json:"remarks"`
}

type UpdateInquiryStatusRequest struct {
	Status   string  `json:"status"    validate:"required"`
	NextDate *string `json:"next_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateInquiryRemarksRequest sets the general and additional-supply remarks.
type UpdateInquiryRemarksRequest struct {
	Remarks    *string `json:"remarks"`
	RemarksAdd *string `json:"remarks_add"`
}

type InquiryItemRequest struct {
	ItemName string          `json:"item_name" validate:"required,max=200"`
	Quantity decimal.Decimal `json:"quantity"  validate:"gt=0"`
	Price    decimal.Decimal `json:"price"     validate:"min=0"`
}

type ReplaceInquiryItemsRequest struct {
	Items []InquiryItemRequest `json:"items" validate:"dive"`
}

// ReserveInquiryIDRequest picks the month from Date, defaulting to today.
type ReserveInquiryIDRequest struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type InquiryFilter struct {
	Search  string `form:"search"`
	Status  string `form:"status"`
	SalesID string `form:"sales_id" validate:"omitempty,uuid"`
	Month   string `form:"month"`
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type InquiryItemResponse struct {
	ID       string          `json:"id"`
	ItemName string          `json:"item_name"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Amount   decimal.Decimal `json:"amount"`
}

type InquiryResponse struct {
	ID              string                `json:"id"`
	CreateID        string                `json:"create_id"`
	QuoteNo         string                `json:"quote_no"`
	OpportunityID   string                `json:"opportunity_id"`
	Status          string                `json:"status"`
	LeadDescription string                `json:"lead_description"`
	CompanyName     string                `json:"company_name"`
	CustomerName    string                `json:"customer_name"`
	DateOfQuote     string                `json:"date_of_quote"`
	Sales           *UserRef              `json:"sales"`
	NextDate        *string               `json:"next_date"`
	Remarks         *string               `json:"remarks"`
	RemarksAdd      *string               `json:"remarks_add"`
	Items           []InquiryItemResponse `json:"items,omitempty"`
	Total           decimal.Decimal       `json:"total"`
}

type InquiryListResponse struct {
	Data []InquiryResponse `json:"data"`
	ListMeta
}
