package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateCompanyRequest struct {
	CompanyName string  `json:"company_name" validate:"required,max=200"`
	City1       string  `json:"city_1"       validate:"required,max=100"`
	City2       *string `json:"city_2"       validate:"omitempty,max=100"`
	Address1    string  `json:"address_1"    validate:"required"`
	Address2    *string `json:"address_2"`
	Address3    *string `json:"address_3"`
}

type UpdateCompanyRequest struct {
	CompanyName *string `json:"company_name" validate:"omitempty,min=1,max=200"`
	City1       *string `json:"city_1"       validate:"omitempty,min=1,max=100"`
	City2       *string `json:"city_2"       validate:"omitempty,max=100"`
	Address1    *string `json:"address_1"    validate:"omitempty,min=1"`
	Address2    *string `json:"address_2"`
	Address3    *string `json:"address_3"`
}

type CompanyFilter struct {
	Search string `form:"search"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CreateContactRequest struct {
	ContactName       string  `json:"contact_name"       validate:"required,max=200"`
	Email1            string  `json:"email_1"            validate:"required,email,max=254"`
	Email2            *string `json:"email_2"            validate:"omitempty,email,max=254"`
	Phone1            string  `json:"phone_1"            validate:"required,max=20"`
	Phone2            *string `json:"phone_2"            validate:"omitempty,max=20"`
	Phone3            *string `json:"phone_3"            validate:"omitempty,max=20"`
	CompanyID         string  `json:"company_id"         validate:"required,uuid"`
	IndividualAddress string  `json:"individual_address" validate:"required"`
}

type UpdateContactRequest struct {
	ContactName       *string `json:"contact_name"       validate:"omitempty,min=1,max=200"`
	Email1            *string `json:"email_1"            validate:"omitempty,email,max=254"`
	Email2            *string `json:"email_2"            validate:"omitempty,email,max=254"`
	Phone1            *string `json:"phone_1"            validate:"omitempty,min=1,max=20"`
	Phone2            *string `json:"phone_2"            validate:"omitempty,max=20"`
	Phone3            *string `json:"phone_3"            validate:"omitempty,max=20"`
	CompanyID         *string `json:"company_id"         validate:"omitempty,uuid"`
	IndividualAddress *string `json:"individual_address" validate:"omitempty,min=1"`
}

type ContactFilter struct {
	Search    string `form:"search"`
	CompanyID string `form:"company_id" validate:"omitempty,uuid"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CompanyResponse struct {
	ID          string   `json:"id"`
	CompanyName string   `json:"company_name"`
	City1       string   `json:"city_1"`
	City2       *string  `json:"city_2"`
	Cities      []string `json:"cities"`
	Address1    string   `json:"address_1"`
	Address2    *string  `json:"address_2"`
	Address3    *string  `json:"address_3"`
}

type CompanyListResponse struct {
	Data []CompanyResponse `json:"data"`
	ListMeta
}

type ContactResponse struct {
	ID                string   `json:"id"`
	ContactName       string   `json:"contact_name"`
	Emails            []string `json:"emails"`
	Phones            []string `json:"phones"`
	CompanyID         string   `json:"company_id"`
	CompanyName       string   `json:"company_name"`
	LocationCity      string   `json:"location_city"`
	IndividualAddress string   `json:"individual_address"`
}

type ContactListResponse struct {
	Data []ContactResponse `json:"data"`
	ListMeta
}

// ContactRef is the compact contact shown on a purchase order.
type ContactRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
}
