package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_JSON(t *testing.T) {
	tests := []struct {
		in   string
		want Money
		out  string
	}{
		{`1180`, 118000, `1180.00`},
		{`"1180.5"`, 118050, `1180.50`},
		{`0.005`, 1, `0.01`},
		{`-0.005`, -1, `-0.01`},
		{`null`, 0, `0.00`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var m Money
			require.NoError(t, json.Unmarshal([]byte(tt.in), &m))
			assert.Equal(t, tt.want, m)

			b, err := json.Marshal(m)
			require.NoError(t, err)
			assert.Equal(t, tt.out, string(b))
		})
	}
}

func TestMoney_MulPercent(t *testing.T) {
	assert.Equal(t, MustMoney("180"), MustMoney("1000").MulPercent(NewPercent(18)))
	// 33.33 * 12.5% = 4.16625
	assert.Equal(t, MustMoney("4.17"), MustMoney("33.33").MulPercent(NewPercent(12.5)))
}

func TestQuantity_Times(t *testing.T) {
	q := NewQuantity(2.5)
	assert.Equal(t, MustMoney("25.03"), q.Times(MustMoney("10.01")))
	assert.Equal(t, "2.5000", q.String())
}

func TestQuantity_UnmarshalJSON(t *testing.T) {
	var q Quantity
	require.NoError(t, json.Unmarshal([]byte(`"3"`), &q))
	assert.Equal(t, NewQuantityFromInt(3), q)

	require.NoError(t, json.Unmarshal([]byte(`1.23456`), &q))
	assert.Equal(t, Quantity(12346), q)

	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &q))
}
