package event

import (
	"testing"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSerializer(t *testing.T) {
	s := NewEventSerializer()
	RegisterSettlementEvents(s)

	t.Run("registers every settlement event", func(t *testing.T) {
		for _, et := range SettlementEventTypes() {
			assert.True(t, s.IsRegistered(et), et)
		}
		assert.Len(t, s.RegisteredTypes(), len(SettlementEventTypes()))
		assert.False(t, s.IsRegistered("unknown"))
	})

	t.Run("round trips a completed event", func(t *testing.T) {
		tenantID := uuid.New()
		sess := settlement.NewSession(tenantID, 7)
		snap := settlement.SettlementSnapshot{
			ID:          uuid.New(),
			CustomerRef: "C-001",
			CompanyID:   7,
			TotalToPay:  decimal.RequireFromString("340.50"),
		}
		original := settlement.NewSettlementCompletedEvent(sess, snap)

		data, err := s.Serialize(original)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"total_to_pay":"340.5"`)

		decoded, err := s.Deserialize(settlement.EventTypeSettlementCompleted, data)
		require.NoError(t, err)
		completed, ok := decoded.(*settlement.SettlementCompletedEvent)
		require.True(t, ok)
		assert.Equal(t, original.EventID(), completed.EventID())
		assert.Equal(t, sess.ID, completed.AggregateID())
		assert.Equal(t, tenantID, completed.TenantID())
		assert.Equal(t, snap.ID, completed.SnapshotID)
		assert.True(t, snap.TotalToPay.Equal(completed.TotalToPay))
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := s.Deserialize("unknown", []byte(`{}`))
		assert.Error(t, err)
	})

	t.Run("malformed payload", func(t *testing.T) {
		_, err := s.Deserialize(settlement.EventTypeNotification, []byte(`{`))
		assert.Error(t, err)
	})
}
