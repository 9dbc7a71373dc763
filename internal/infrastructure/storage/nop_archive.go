package storage

import (
	"context"

	"github.com/erp/settlement/internal/domain/settlement"
	"go.uber.org/zap"
)

// NopArchive is used when object storage is disabled. It only logs.
type NopArchive struct {
	logger *zap.Logger
}

// NewNopArchive creates a NopArchive
func NewNopArchive(logger *zap.Logger) *NopArchive {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NopArchive{logger: logger}
}

// Archive logs the snapshot id and returns its would-be key
func (a *NopArchive) Archive(_ context.Context, snapshot settlement.SettlementSnapshot) (string, error) {
	key := ObjectKey("", snapshot)
	a.logger.Debug("Settlement archive disabled, snapshot not stored",
		zap.String("snapshot_id", snapshot.ID.String()),
		zap.String("key", key),
	)
	return key, nil
}

var _ settlement.SettlementArchive = (*NopArchive)(nil)
