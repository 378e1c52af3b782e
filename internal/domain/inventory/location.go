package inventory

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
)

// Location is a named stock-keeping area such as a store floor or back room.
type Location struct {
	shared.BaseEntity
	TenantID uuid.UUID
	Code     string
	Name     string
	IsActive bool
}

// NewLocation creates an active location
func NewLocation(tenantID uuid.UUID, code, name string) (*Location, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_LOCATION_CODE", "Location code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_LOCATION_NAME", "Location name cannot be empty")
	}
	return &Location{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		Code:       code,
		Name:       name,
		IsActive:   true,
	}, nil
}
