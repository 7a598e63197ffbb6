package rental_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/coverage-engine/coverage"
	"github.com/warp/coverage-engine/rental"
)

func TestPatientMethodsRegistered(t *testing.T) {
	for _, m := range []coverage.PaymentMethod{
		rental.MethodCash, rental.MethodCheque, rental.MethodTransfer, rental.MethodTraite, rental.MethodCard,
	} {
		t.Run(string(m), func(t *testing.T) {
			parsed, err := coverage.ParsePaymentMethod(string(m))
			require.NoError(t, err)
			assert.Equal(t, m, parsed)
			assert.False(t, parsed.IsCNAM())
			assert.Equal(t, coverage.PayerPatient, parsed.Payer())
		})
	}

	_, err := coverage.ParsePaymentMethod("BITCOIN")
	assert.ErrorIs(t, err, coverage.ErrUnknownPaymentMethod)
}

func TestSchedulePresets(t *testing.T) {
	var split map[string]any
	require.NoError(t, json.Unmarshal([]byte(rental.SplitMonthlyScheduleJSON("split", "Split", 300, 80)), &split))
	assert.Equal(t, "monthly", split["frequency"])
	assert.Equal(t, "CNAM", split["payment_method"])
	assert.EqualValues(t, 80, split["cnam_share_percent"])

	var custom map[string]any
	require.NoError(t, json.Unmarshal([]byte(rental.CustomDaysScheduleJSON("c", "Custom", string(rental.MethodCard), 15, 120)), &custom))
	assert.EqualValues(t, 15, custom["interval_days"])
	assert.Equal(t, "CARD", custom["payment_method"])
}

func TestBondTypes(t *testing.T) {
	assert.Equal(t, []string{"ALD", "APCI", "HOSPITALIZATION", "OTHER"}, rental.BondTypes())
}
