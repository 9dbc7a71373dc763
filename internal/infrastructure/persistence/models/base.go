package models

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TenantModel scopes a row to a tenant and a company inside it
type TenantModel struct {
	BaseModel
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index:idx_tenant_company_customer,priority:1"`
	CompanyID int64     `gorm:"not null;index:idx_tenant_company_customer,priority:2"`
}
