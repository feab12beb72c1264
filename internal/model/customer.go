package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Company is a customer organisation. Name is unique per primary city.
type Company struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyName string    `gorm:"type:varchar(200);not null;uniqueIndex:uni_companies_name_city"`
	City1       string    `gorm:"column:city_1;type:varchar(100);not null;uniqueIndex:uni_companies_name_city"`
	City2       *string   `gorm:"column:city_2;type:varchar(100)"`
	Address1    string    `gorm:"column:address_1;type:text;not null"`
	Address2    *string   `gorm:"column:address_2;type:text"`
	Address3    *string   `gorm:"column:address_3;type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Company) TableName() string { return "companies" }

func (c *Company) Cities() []string {
	return nonBlank(&c.City1, c.City2)
}

func (c *Company) Addresses() []string {
	return nonBlank(&c.Address1, c.Address2, c.Address3)
}

// Contact is a person at a Company. Purchase orders take their customer and
// company names from the contact they are raised for.
type Contact struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ContactName string    `gorm:"type:varchar(200);not null"`
	Email1      string    `gorm:"column:email_1;type:varchar(254);not null"`
	Email2      *string   `gorm:"column:email_2;type:varchar(254)"`
	Phone1      string    `gorm:"column:phone_1;type:varchar(20);not null"`
	Phone2      *string   `gorm:"column:phone_2;type:varchar(20)"`
	Phone3      *string   `gorm:"column:phone_3;type:varchar(20)"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Company     *Company  `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
	// LocationCity mirrors the company's primary city
	LocationCity      string `gorm:"type:varchar(100)"`
	IndividualAddress string `gorm:"type:text;not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Contact) TableName() string { return "contacts" }

// AttachCompany sets the company and copies its primary city.
func (c *Contact) AttachCompany(co *Company) {
	c.CompanyID = co.ID
	c.Company = co
	c.LocationCity = co.City1
}

func (c *Contact) Emails() []string {
	return nonBlank(&c.Email1, c.Email2)
}

func (c *Contact) Phones() []string {
	return nonBlank(&c.Phone1, c.Phone2, c.Phone3)
}

// CompanyName is "" when the company is not loaded.
func (c *Contact) CompanyName() string {
	if c == nil || c.Company == nil {
		return ""
	}
	return c.Company.CompanyName
}

func nonBlank(vals ...*string) []string {
	var out []string
	for _, v := range vals {
		if v != nil && strings.TrimSpace(*v) != "" {
			out = append(out, strings.TrimSpace(*v))
		}
	}
	return out
}
