// Package weaver provides the vendor (weaver) catalog.
package weaver

import (
	"context"
	"regexp"
	"strings"
	"time"

	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/types"
)

var (
	emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	ifscRE  = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
)

// Status values.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Weaver is a supplier with a running payable balance.
type Weaver struct {
	ID                   string      `json:"weaver_id" db:"id" bson:"_id"`
	AccountID            string      `json:"account_id" db:"account_id" bson:"account_id"`
	Code                 string      `json:"weaver_code" db:"code" bson:"code"`
	Name                 string      `json:"weaver_name" db:"name" bson:"name"`
	DisplayName          string      `json:"display_name" db:"display_name" bson:"display_name"`
	ContactNumber        string      `json:"contact_number" db:"contact_number" bson:"contact_number"`
	Email                string      `json:"email" db:"email" bson:"email"`
	Address              string      `json:"address" db:"address" bson:"address"`
	GSTIN                string      `json:"gstin" db:"gstin" bson:"gstin"`
	PAN                  string      `json:"pan_number" db:"pan_number" bson:"pan_number"`
	VendorType           string      `json:"vendor_type" db:"vendor_type" bson:"vendor_type"`
	BankName             string      `json:"bank_name" db:"bank_name" bson:"bank_name"`
	AccountName          string      `json:"account_name" db:"account_name" bson:"account_name"`
	AccountNumber        string      `json:"account_number" db:"account_number" bson:"account_number"`
	IFSC                 string      `json:"ifsc_code" db:"ifsc_code" bson:"ifsc_code"`
	PreferredPaymentMode string      `json:"preferred_payment_mode" db:"preferred_payment_mode" bson:"preferred_payment_mode"`
	PaymentTerms         string      `json:"payment_terms" db:"payment_terms" bson:"payment_terms"`
	CreditPeriodDays     int         `json:"credit_period_days" db:"credit_period_days" bson:"credit_period_days"`
	OpeningBalance       types.Money `json:"opening_balance" db:"opening_balance" bson:"opening_balance"`
	CurrentBalance       types.Money `json:"current_balance" db:"current_balance" bson:"current_balance"`
	Status               string      `json:"status" db:"status" bson:"status"`
	Notes                string      `json:"notes" db:"notes" bson:"notes"`
	CreatedAt            time.Time   `json:"created_at" db:"created_at" bson:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at" db:"updated_at" bson:"updated_at"`
}

// Validate checks required fields and formats.
func (w *Weaver) Validate(ctx context.Context) error {
	if strings.TrimSpace(w.Name) == "" {
		return apperror.NewValidation("weaver name is required").WithDetail("field", "weaver_name")
	}
	if w.Email != "" && !emailRE.MatchString(w.Email) {
		return apperror.NewValidation("invalid email format").WithDetail("field", "email")
	}
	if w.IFSC != "" && !ifscRE.MatchString(strings.ToUpper(w.IFSC)) {
		return apperror.NewValidation("invalid IFSC code").WithDetail("field", "ifsc_code")
	}
	if w.CreditPeriodDays < 0 {
		return apperror.NewValidation("credit period cannot be negative").WithDetail("field", "credit_period_days")
	}
	return nil
}

// IsActive reports whether the weaver is not deactivated.
func (w *Weaver) IsActive() bool { return w.Status != StatusInactive }

// Patch holds the fields of a partial update. Nil fields are left unchanged.
type Patch struct {
	Name                 *string
	DisplayName          *string
	ContactNumber        *string
	Email                *string
	Address              *string
	GSTIN                *string
	PAN                  *string
	VendorType           *string
	BankName             *string
	AccountName          *string
	AccountNumber        *string
	IFSC                 *string
	PreferredPaymentMode *string
	PaymentTerms         *string
	CreditPeriodDays     *int
	OpeningBalance       *types.Money
	Status               *string
	Notes                *string
}

func (p Patch) apply(w *Weaver) {
	for _, f := range []struct {
		dst *string
		v   *string
	}{
		{&w.Name, p.Name},
		{&w.DisplayName, p.DisplayName},
		{&w.ContactNumber, p.ContactNumber},
		{&w.Email, p.Email},
		{&w.Address, p.Address},
		{&w.GSTIN, p.GSTIN},
		{&w.PAN, p.PAN},
		{&w.VendorType, p.VendorType},
		{&w.BankName, p.BankName},
		{&w.AccountName, p.AccountName},
		{&w.AccountNumber, p.AccountNumber},
		{&w.IFSC, p.IFSC},
		{&w.PreferredPaymentMode, p.PreferredPaymentMode},
		{&w.PaymentTerms, p.PaymentTerms},
		{&w.Status, p.Status},
		{&w.Notes, p.Notes},
	} {
		if f.v != nil {
			*f.dst = *f.v
		}
	}
	if p.CreditPeriodDays != nil {
		w.CreditPeriodDays = *p.CreditPeriodDays
	}
	if p.OpeningBalance != nil {
		w.OpeningBalance = *p.OpeningBalance
	}
}
