package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is anything addressed by a stable id
type Entity interface {
	GetID() uuid.UUID
}

// BaseEntity holds the id and UTC audit timestamps of an aggregate
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID implements Entity
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// Touch stamps a state change made at t
func (e *BaseEntity) Touch(t time.Time) {
	e.UpdatedAt = t.UTC()
}

// NewBaseEntity assigns a random id; both timestamps share one instant
func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
