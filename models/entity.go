package models

import "fmt"

// EntityType is the category of legislative item a summary is attached to.
type EntityType string

const (
	EntityLegislativeAct  EntityType = "legislative-act"
	EntityConsultation    EntityType = "consultation"
	EntityPreConsultation EntityType = "pre-consultation"
)

// ParseEntityType normalizes a wire value into an EntityType. The legacy
// frontend sends Polish names, so those are accepted as aliases.
func ParseEntityType(raw string) (EntityType, error) {
	switch raw {
	case string(EntityLegislativeAct), "ustawa":
		return EntityLegislativeAct, nil
	case string(EntityConsultation), "konsultacja":
		return EntityConsultation, nil
	case string(EntityPreConsultation), "prekonsultacja":
		return EntityPreConsultation, nil
	}
	return "", fmt.Errorf("unknown entity type: %q", raw)
}
