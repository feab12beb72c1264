package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreatePurchaseOrderRequest struct {
	PONumber                 string           `json:"po_number"                  validate:"required,max=50"`
	OrderDate                string           `json:"order_date"                 validate:"required,datetime=2006-01-02"`
	ContactID                *string          `json:"contact_id"                 validate:"omitempty,uuid"`
	CompanyName              string           `json:"company_name"               validate:"max=200"`
	CustomerName             string           `json:"customer_name"              validate:"required_without=ContactID,max=200"`
	OrderValue               decimal.Decimal  `json:"order_value"                validate:"min=0"`
	DaysToMfg                int              `json:"days_to_mfg"                validate:"min=0"`
	PaymentTermsDays         *int             `json:"payment_terms_days"         validate:"omitempty,min=0"`
	SalesPersonID            *string          `json:"sales_person_id"            validate:"omitempty,uuid"`
	SalesPercentage          *decimal.Decimal `json:"sales_percentage"`
	ProjectManagerID         *string          `json:"project_manager_id"         validate:"omitempty,uuid"`
	ProjectManagerPercentage *decimal.Decimal `json:"project_manager_percentage"`
	Remarks                  *string          `json:"remarks"`
}

// UpdatePurchaseOrderRequest patches source fields; the delivery date follows.
type UpdatePurchaseOrderRequest struct {
	OrderDate                *string          `json:"order_date"                 validate:"omitempty,datetime=2006-01-02"`
	ContactID                *string          `json:"contact_id"                 validate:"omitempty,uuid"`
	CompanyName              *string          `json:"company_name"               validate:"omitempty,max=200"`
	CustomerName             *string          `json:"customer_name"              validate:"omitempty,min=1,max=200"`
	OrderValue               *decimal.Decimal `json:"order_value"                validate:"omitempty,min=0"`
	DaysToMfg                *int             `json:"days_to_mfg"                validate:"omitempty,min=0"`
	PaymentTermsDays         *int             `json:"payment_terms_days"         validate:"omitempty,min=0"`
	SalesPersonID            *string          `json:"sales_person_id"            validate:"omitempty,uuid"`
	SalesPercentage          *decimal.Decimal `json:"sales_percentage"`
	ProjectManagerID         *string          `json:"project_manager_id"         validate:"omitempty,uuid"`
	ProjectManagerPercentage *decimal.Decimal `json:"project_manager_percentage"`
	Remarks                  *string          `json:"remarks"`
}

type UpdatePurchaseOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open delivered closed"`
}

type PurchaseOrderFilter struct {
	Search string `form:"search"`
	Status string `form:"status" validate:"omitempty,oneof=open delivered closed"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PurchaseOrderResponse struct {
	ID                       string           `json:"id"`
	PONumber                 string           `json:"po_number"`
	OrderDate                string           `json:"order_date"`
	Contact                  *ContactRef      `json:"contact"`
	CompanyName              string           `json:"company_name"`
	CustomerName             string           `json:"customer_name"`
	OrderValue               decimal.Decimal  `json:"order_value"`
	DaysToMfg                int              `json:"days_to_mfg"`
	PaymentTermsDays         *int             `json:"payment_terms_days"`
	DeliveryDate             string           `json:"delivery_date"`
	DueDays                  int              `json:"due_days"`
	DueStatus                string           `json:"due_status"`
	DueText                  string           `json:"due_text"`
	Status                   string           `json:"status"`
	SalesPerson              *UserRef         `json:"sales_person"`
	SalesPercentage          *decimal.Decimal `json:"sales_percentage"`
	ProjectManager           *UserRef         `json:"project_manager"`
	ProjectManagerPercentage *decimal.Decimal `json:"project_manager_percentage"`
	Remarks                  *string          `json:"remarks"`
}

type PurchaseOrderListResponse struct {
	Data []PurchaseOrderResponse `json:"data"`
	ListMeta
}
