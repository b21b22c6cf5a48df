package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/catalogs/customer"
	"weavebooks/internal/domain/documents/invoice"
)

func TestExtractDBColumns_FlattensSnapshot(t *testing.T) {
	cols := ExtractDBColumns[invoice.Invoice]()

	for _, expected := range []string{"id", "account_id", "invoice_number", "customer_name", "customer_gstin", "items", "stock_pending"} {
		assert.Contains(t, cols, expected)
	}
	assert.NotContains(t, cols, "Snapshot")
}

func TestStructToMap_EmbeddedFields(t *testing.T) {
	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	inv := &invoice.Invoice{
		ID:            "inv-1",
		InvoiceNumber: "INV-0001",
		Snapshot:      customer.Snapshot{Name: "Asha Textiles", Code: "C001"},
		DueDate:       &due,
		GrandTotal:    types.MustMoney("1180"),
	}

	m := StructToMap(inv)

	assert.Equal(t, "inv-1", m["id"])
	assert.Equal(t, "Asha Textiles", m["customer_name"])
	assert.Equal(t, "C001", m["customer_code"])
	assert.Equal(t, &due, m["due_date"])
	assert.Equal(t, types.MustMoney("1180"), m["grand_total"])
	assert.Len(t, m, len(ExtractDBColumns[invoice.Invoice]()))
}
