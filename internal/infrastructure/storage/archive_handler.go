package storage

import (
	"context"
	"fmt"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/domain/shared"
)

// ArchiveHandler archives the snapshot carried by settlement.completed events
type ArchiveHandler struct {
	archive settlement.SettlementArchive
}

// NewArchiveHandler creates an ArchiveHandler
func NewArchiveHandler(archive settlement.SettlementArchive) *ArchiveHandler {
	return &ArchiveHandler{archive: archive}
}

// EventTypes implements shared.EventHandler
func (h *ArchiveHandler) EventTypes() []string {
	return []string{settlement.EventTypeSettlementCompleted}
}

// Handle implements shared.EventHandler
func (h *ArchiveHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	completed, ok := evt.(*settlement.SettlementCompletedEvent)
	if !ok {
		return fmt.Errorf("archive handler got unexpected event %s", evt.EventType())
	}
	_, err := h.archive.Archive(ctx, completed.Snapshot)
	return err
}

// SnapshotKey deduplicates completed events by snapshot id
func SnapshotKey(evt shared.DomainEvent) string {
	if completed, ok := evt.(*settlement.SettlementCompletedEvent); ok {
		return completed.SnapshotID.String()
	}
	return evt.EventID().String()
}

var _ shared.EventHandler = (*ArchiveHandler)(nil)
