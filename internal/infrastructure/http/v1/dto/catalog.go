package dto

import (
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/catalogs/category"
	"weavebooks/internal/domain/catalogs/customer"
	"weavebooks/internal/domain/catalogs/item"
	"weavebooks/internal/domain/catalogs/weaver"
)

// CatalogListQuery is the query of customer, weaver and item lists.
type CatalogListQuery struct {
	ListQuery
	IncludeInactive bool   `form:"include_inactive"`
	Category        string `form:"category"`
	LowStock        bool   `form:"low_stock"`
}

// --- Customers ---

// CreateCustomerRequest is the body of POST /customers.
type CreateCustomerRequest struct {
	CustomerType   string      `json:"customer_type"`
	Name           string      `json:"customer_name" binding:"required"`
	CompanyName    string      `json:"company_name"`
	ContactNumber  string      `json:"contact_number"`
	MobileNumber   string      `json:"mobile_number"`
	Email          string      `json:"email" binding:"omitempty,email"`
	GSTIN          string      `json:"gstin"`
	PAN            string      `json:"pan_number"`
	BillingAddress string      `json:"billing_address"`
	BillingCity    string      `json:"billing_city"`
	BillingState   string      `json:"billing_state"`
	BillingZip     string      `json:"billing_zip"`
	BillingPhone   string      `json:"billing_phone"`
	PaymentTerms   string      `json:"payment_terms"`
	OpeningBalance types.Money `json:"opening_balance"`
	Notes          string      `json:"notes"`
}

// ToEntity maps the request to a new customer.
func (r CreateCustomerRequest) ToEntity() *customer.Customer {
	return &customer.Customer{
		CustomerType:   r.CustomerType,
		Name:           r.Name,
		CompanyName:    r.CompanyName,
		ContactNumber:  r.ContactNumber,
		MobileNumber:   r.MobileNumber,
		Email:          r.Email,
		GSTIN:          r.GSTIN,
		PAN:            r.PAN,
		BillingAddress: r.BillingAddress,
		BillingCity:    r.BillingCity,
		BillingState:   r.BillingState,
		BillingZip:     r.BillingZip,
		BillingPhone:   r.BillingPhone,
		PaymentTerms:   r.PaymentTerms,
		OpeningBalance: r.OpeningBalance,
		Notes:          r.Notes,
	}
}

// UpdateCustomerRequest is the body of PUT /customers/:id. Absent fields are kept.
type UpdateCustomerRequest struct {
	CustomerType   *string      `json:"customer_type"`
	Name           *string      `json:"customer_name" binding:"omitempty,min=1"`
	CompanyName    *string      `json:"company_name"`
	ContactNumber  *string      `json:"contact_number"`
	MobileNumber   *string      `json:"mobile_number"`
	Email          *string      `json:"email" binding:"omitempty,email"`
	GSTIN          *string      `json:"gstin"`
	PAN            *string      `json:"pan_number"`
	BillingAddress *string      `json:"billing_address"`
	BillingCity    *string      `json:"billing_city"`
	BillingState   *string      `json:"billing_state"`
	BillingZip     *string      `json:"billing_zip"`
	BillingPhone   *string      `json:"billing_phone"`
	PaymentTerms   *string      `json:"payment_terms"`
	OpeningBalance *types.Money `json:"opening_balance"`
	Status         *string      `json:"status" binding:"omitempty,oneof=active inactive"`
	Notes          *string      `json:"notes"`
}

// ToPatch maps the request to a customer patch.
func (r UpdateCustomerRequest) ToPatch() customer.Patch {
	return customer.Patch{
		CustomerType:   r.CustomerType,
		Name:           r.Name,
		CompanyName:    r.CompanyName,
		ContactNumber:  r.ContactNumber,
		MobileNumber:   r.MobileNumber,
		Email:          r.Email,
		GSTIN:          r.GSTIN,
		PAN:            r.PAN,
		BillingAddress: r.BillingAddress,
		BillingCity:    r.BillingCity,
		BillingState:   r.BillingState,
		BillingZip:     r.BillingZip,
		BillingPhone:   r.BillingPhone,
		PaymentTerms:   r.PaymentTerms,
		OpeningBalance: r.OpeningBalance,
		Status:         r.Status,
		Notes:          r.Notes,
	}
}

// --- Weavers ---

// CreateWeaverRequest is the body of POST /weavers.
type CreateWeaverRequest struct {
	Name                 string      `json:"weaver_name" binding:"required"`
	DisplayName          string      `json:"display_name"`
	ContactNumber        string      `json:"contact_number"`
	Email                string      `json:"email" binding:"omitempty,email"`
	Address              string      `json:"address"`
	GSTIN                string      `json:"gstin"`
	PAN                  string      `json:"pan_number"`
	VendorType           string      `json:"vendor_type"`
	BankName             string      `json:"bank_name"`
	AccountName          string      `json:"account_name"`
	AccountNumber        string      `json:"account_number"`
	IFSC                 string      `json:"ifsc_code"`
	PreferredPaymentMode string      `json:"preferred_payment_mode"`
	PaymentTerms         string      `json:"payment_terms"`
	CreditPeriodDays     int         `json:"credit_period_days" binding:"gte=0"`
	OpeningBalance       types.Money `json:"opening_balance"`
	Notes                string      `json:"notes"`
}

// ToEntity maps the request to a new weaver.
func (r CreateWeaverRequest) ToEntity() *weaver.Weaver {
	return &weaver.Weaver{
		Name:                 r.Name,
		DisplayName:          r.DisplayName,
		ContactNumber:        r.ContactNumber,
		Email:                r.Email,
		Address:              r.Address,
		GSTIN:                r.GSTIN,
		PAN:                  r.PAN,
		VendorType:           r.VendorType,
		BankName:             r.BankName,
		AccountName:          r.AccountName,
		AccountNumber:        r.AccountNumber,
		IFSC:                 r.IFSC,
		PreferredPaymentMode: r.PreferredPaymentMode,
		PaymentTerms:         r.PaymentTerms,
		CreditPeriodDays:     r.CreditPeriodDays,
		OpeningBalance:       r.OpeningBalance,
		Notes:                r.Notes,
	}
}

// UpdateWeaverRequest is the body of PUT /weavers/:id.
type UpdateWeaverRequest struct {
	Name                 *string      `json:"weaver_name" binding:"omitempty,min=1"`
	DisplayName          *string      `json:"display_name"`
	ContactNumber        *string      `json:"contact_number"`
	Email                *string      `json:"email" binding:"omitempty,email"`
	Address              *string      `json:"address"`
	GSTIN                *string      `json:"gstin"`
	PAN                  *string      `json:"pan_number"`
	VendorType           *string      `json:"vendor_type"`
	BankName             *string      `json:"bank_name"`
	AccountName          *string      `json:"account_name"`
	AccountNumber        *string      `json:"account_number"`
	IFSC                 *string      `json:"ifsc_code"`
	PreferredPaymentMode *string      `json:"preferred_payment_mode"`
	PaymentTerms         *string      `json:"payment_terms"`
	CreditPeriodDays     *int         `json:"credit_period_days" binding:"omitempty,gte=0"`
	OpeningBalance       *types.Money `json:"opening_balance"`
	Status               *string      `json:"status" binding:"omitempty,oneof=active inactive"`
	Notes                *string      `json:"notes"`
}

// ToPatch maps the request to a weaver patch.
func (r UpdateWeaverRequest) ToPatch() weaver.Patch {
	return weaver.Patch{
		Name:                 r.Name,
		DisplayName:          r.DisplayName,
		ContactNumber:        r.ContactNumber,
		Email:                r.Email,
		Address:              r.Address,
		GSTIN:                r.GSTIN,
		PAN:                  r.PAN,
		VendorType:           r.VendorType,
		BankName:             r.BankName,
		AccountName:          r.AccountName,
		AccountNumber:        r.AccountNumber,
		IFSC:                 r.IFSC,
		PreferredPaymentMode: r.PreferredPaymentMode,
		PaymentTerms:         r.PaymentTerms,
		CreditPeriodDays:     r.CreditPeriodDays,
		OpeningBalance:       r.OpeningBalance,
		Status:               r.Status,
		Notes:                r.Notes,
	}
}

// --- Items ---

// CreateItemRequest is the body of POST /items.
type CreateItemRequest struct {
	Name          string         `json:"item_name" binding:"required"`
	ItemType      string         `json:"item_type"`
	SKU           string         `json:"sku"`
	Brand         string         `json:"brand"`
	Category      string         `json:"category_id"`
	HSNCode       string         `json:"hsn_code"`
	Unit          string         `json:"unit"`
	TaxRate       types.Percent  `json:"tax_rate"`
	PurchasePrice types.Money    `json:"purchase_price"`
	SellingPrice  types.Money    `json:"selling_price"`
	ReorderLevel  types.Quantity `json:"reorder_level"`
	OpeningStock  types.Quantity `json:"opening_stock"`
	Description   string         `json:"description"`
}

// ToEntity maps the request to a new item.
func (r CreateItemRequest) ToEntity() *item.Item {
	return &item.Item{
		Name:          r.Name,
		ItemType:      r.ItemType,
		SKU:           r.SKU,
		Brand:         r.Brand,
		Category:      r.Category,
		HSNCode:       r.HSNCode,
		Unit:          r.Unit,
		TaxRate:       r.TaxRate,
		PurchasePrice: r.PurchasePrice,
		SellingPrice:  r.SellingPrice,
		ReorderLevel:  r.ReorderLevel,
		OpeningStock:  r.OpeningStock,
		Description:   r.Description,
	}
}

// UpdateItemRequest is the body of PUT /items/:id. current_stock cannot be set.
type UpdateItemRequest struct {
	Name          *string         `json:"item_name" binding:"omitempty,min=1"`
	ItemType      *string         `json:"item_type"`
	SKU           *string         `json:"sku"`
	Brand         *string         `json:"brand"`
	Category      *string         `json:"category_id"`
	HSNCode       *string         `json:"hsn_code"`
	Unit          *string         `json:"unit"`
	TaxRate       *types.Percent  `json:"tax_rate"`
	PurchasePrice *types.Money    `json:"purchase_price"`
	SellingPrice  *types.Money    `json:"selling_price"`
	ReorderLevel  *types.Quantity `json:"reorder_level"`
	OpeningStock  *types.Quantity `json:"opening_stock"`
	Status        *string         `json:"status" binding:"omitempty,oneof=active inactive"`
	Description   *string         `json:"description"`
}

// ToPatch maps the request to an item patch.
func (r UpdateItemRequest) ToPatch() item.Patch {
	return item.Patch{
		Name:          r.Name,
		ItemType:      r.ItemType,
		SKU:           r.SKU,
		Brand:         r.Brand,
		Category:      r.Category,
		HSNCode:       r.HSNCode,
		Unit:          r.Unit,
		TaxRate:       r.TaxRate,
		PurchasePrice: r.PurchasePrice,
		SellingPrice:  r.SellingPrice,
		ReorderLevel:  r.ReorderLevel,
		OpeningStock:  r.OpeningStock,
		Status:        r.Status,
		Description:   r.Description,
	}
}

// --- Categories ---

// CategoryListQuery is the query of GET /categories.
type CategoryListQuery struct {
	ListQuery
	Status string `form:"status" binding:"omitempty,oneof=active inactive"`
}

// CreateCategoryRequest is the body of POST /categories.
type CreateCategoryRequest struct {
	Name        string `json:"category_name" binding:"required,min=3,max=100"`
	Description string `json:"description" binding:"max=500"`
	Status      string `json:"status" binding:"omitempty,oneof=active inactive"`
}

// ToEntity maps the request to a new category.
func (r CreateCategoryRequest) ToEntity() *category.Category {
	return &category.Category{Name: r.Name, Description: r.Description, Status: r.Status}
}

// UpdateCategoryRequest is the body of PUT /categories/:id. Absent fields are kept.
type UpdateCategoryRequest struct {
	Name        *string `json:"category_name" binding:"omitempty,min=3,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	Status      *string `json:"status" binding:"omitempty,oneof=active inactive"`
}

// ToPatch maps the request to a category patch.
func (r UpdateCategoryRequest) ToPatch() category.Patch {
	return category.Patch{Name: r.Name, Description: r.Description, Status: r.Status}
}
