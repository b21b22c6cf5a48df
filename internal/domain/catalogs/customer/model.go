// Package customer provides the customer catalog.
package customer

import (
	"context"
	"regexp"
	"strings"
	"time"

	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/types"
)

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Status values.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Customer is a buyer with a running receivable balance.
type Customer struct {
	ID             string      `json:"customer_id" db:"id" bson:"_id"`
	AccountID      string      `json:"account_id" db:"account_id" bson:"account_id"`
	Code           string      `json:"customer_code" db:"code" bson:"code"`
	CustomerType   string      `json:"customer_type" db:"customer_type" bson:"customer_type"`
	Name           string      `json:"customer_name" db:"name" bson:"name"`
	CompanyName    string      `json:"company_name" db:"company_name" bson:"company_name"`
	ContactNumber  string      `json:"contact_number" db:"contact_number" bson:"contact_number"`
	MobileNumber   string      `json:"mobile_number" db:"mobile_number" bson:"mobile_number"`
	Email          string      `json:"email" db:"email" bson:"email"`
	GSTIN          string      `json:"gstin" db:"gstin" bson:"gstin"`
	PAN            string      `json:"pan_number" db:"pan_number" bson:"pan_number"`
	BillingAddress string      `json:"billing_address" db:"billing_address" bson:"billing_address"`
	BillingCity    string      `json:"billing_city" db:"billing_city" bson:"billing_city"`
	BillingState   string      `json:"billing_state" db:"billing_state" bson:"billing_state"`
	BillingZip     string      `json:"billing_zip" db:"billing_zip" bson:"billing_zip"`
	BillingPhone   string      `json:"billing_phone" db:"billing_phone" bson:"billing_phone"`
	PaymentTerms   string      `json:"payment_terms" db:"payment_terms" bson:"payment_terms"`
	OpeningBalance types.Money `json:"opening_balance" db:"opening_balance" bson:"opening_balance"`
	CurrentBalance types.Money `json:"current_balance" db:"current_balance" bson:"current_balance"`
	Status         string      `json:"status" db:"status" bson:"status"`
	Notes          string      `json:"notes" db:"notes" bson:"notes"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at" bson:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at" bson:"updated_at"`
}

// Validate checks required fields.
func (c *Customer) Validate(ctx context.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("customer name is required").WithDetail("field", "customer_name")
	}
	if c.Email != "" && !emailRE.MatchString(c.Email) {
		return apperror.NewValidation("invalid email format").WithDetail("field", "email")
	}
	if c.Status != "" && c.Status != StatusActive && c.Status != StatusInactive {
		return apperror.NewValidation("invalid status").WithDetail("field", "status")
	}
	return nil
}

// IsActive reports whether the customer is not deactivated.
func (c *Customer) IsActive() bool { return c.Status != StatusInactive }

// Snapshot is the customer data copied onto sales documents at creation time.
type Snapshot struct {
	Name    string `json:"customer_name" db:"customer_name" bson:"customer_name"`
	Code    string `json:"customer_code" db:"customer_code" bson:"customer_code"`
	Address string `json:"customer_address" db:"customer_address" bson:"customer_address"`
	City    string `json:"customer_city" db:"customer_city" bson:"customer_city"`
	State   string `json:"customer_state" db:"customer_state" bson:"customer_state"`
	Pincode string `json:"customer_pincode" db:"customer_pincode" bson:"customer_pincode"`
	Phone   string `json:"customer_phone" db:"customer_phone" bson:"customer_phone"`
	Email   string `json:"customer_email" db:"customer_email" bson:"customer_email"`
	GSTIN   string `json:"customer_gstin" db:"customer_gstin" bson:"customer_gstin"`
}

// Snapshot captures the display fields of c.
func (c *Customer) Snapshot() Snapshot {
	phone := c.MobileNumber
	if phone == "" {
		phone = c.BillingPhone
	}
	return Snapshot{
		Name:    c.Name,
		Code:    c.Code,
		Address: c.BillingAddress,
		City:    c.BillingCity,
		State:   c.BillingState,
		Pincode: c.BillingZip,
		Phone:   phone,
		Email:   c.Email,
		GSTIN:   c.GSTIN,
	}
}

// Patch holds the fields of a partial update. Nil fields are left unchanged.
type Patch struct {
	CustomerType   *string
	Name           *string
	CompanyName    *string
	ContactNumber  *string
	MobileNumber   *string
	Email          *string
	GSTIN          *string
	PAN            *string
	BillingAddress *string
	BillingCity    *string
	BillingState   *string
	BillingZip     *string
	BillingPhone   *string
	PaymentTerms   *string
	OpeningBalance *types.Money
	Status         *string
	Notes          *string
}

// apply merges p into c. It never touches CurrentBalance.
func (p Patch) apply(c *Customer) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&c.CustomerType, p.CustomerType)
	set(&c.Name, p.Name)
	set(&c.CompanyName, p.CompanyName)
	set(&c.ContactNumber, p.ContactNumber)
	set(&c.MobileNumber, p.MobileNumber)
	set(&c.Email, p.Email)
	set(&c.GSTIN, p.GSTIN)
	set(&c.PAN, p.PAN)
	set(&c.BillingAddress, p.BillingAddress)
	set(&c.BillingCity, p.BillingCity)
	set(&c.BillingState, p.BillingState)
	set(&c.BillingZip, p.BillingZip)
	set(&c.BillingPhone, p.BillingPhone)
	set(&c.PaymentTerms, p.PaymentTerms)
	set(&c.Status, p.Status)
	set(&c.Notes, p.Notes)
	if p.OpeningBalance != nil {
		c.OpeningBalance = *p.OpeningBalance
	}
}
