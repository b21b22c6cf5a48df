package balance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/types"
)

func TestForInvoice(t *testing.T) {
	m := types.MustMoney
	tests := []struct {
		name       string
		grand      types.Money
		received   types.Money
		wantBal    types.Money
		wantStatus PaymentStatus
	}{
		{"unpaid", m("1180"), 0, m("1180"), StatusUnpaid},
		{"partial", m("1180"), m("180"), m("1000"), StatusPartial},
		{"paid exactly", m("1180"), m("1180"), 0, StatusPaid},
		{"overpaid clamps", m("1180"), m("1200"), 0, StatusPaid},
		{"zero total", 0, 0, 0, StatusPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bal, st := ForInvoice(tt.grand, tt.received)
			assert.Equal(t, tt.wantBal, bal)
			assert.Equal(t, tt.wantStatus, st)
		})
	}
}

type recordingStore struct {
	deltas map[string]types.Money
}

func (s *recordingStore) AdjustBalance(_ context.Context, _ account.Scope, id string, delta types.Money) error {
	if s.deltas == nil {
		s.deltas = make(map[string]types.Money)
	}
	s.deltas[id] += delta
	return nil
}

func TestPartyLedger_SkipsZeroAndRoutesByParty(t *testing.T) {
	customers := &recordingStore{}
	weavers := &recordingStore{}
	l := NewPartyLedger(customers, weavers)
	scope := account.MustScope("acc")
	ctx := context.Background()

	require.NoError(t, l.Receivable(ctx, scope, "c1", types.MustMoney("100"), "invoice"))
	require.NoError(t, l.Receivable(ctx, scope, "c1", 0, "noop"))
	require.NoError(t, l.Payable(ctx, scope, "w1", types.MustMoney("-40"), "payment"))

	assert.Equal(t, map[string]types.Money{"c1": types.MustMoney("100")}, customers.deltas)
	assert.Equal(t, map[string]types.Money{"w1": types.MustMoney("-40")}, weavers.deltas)
}
