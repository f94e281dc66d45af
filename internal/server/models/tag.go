package models

import (
	"time"

	"github.com/google/uuid"
)

// Tag is a coloured visual label that can be attached to assets.
type Tag struct {
	ID         uuid.UUID
	Name       string
	Color      string
	UserID     string
	CompanyID  *uuid.UUID
	CreatedAt  time.Time
	AssetCount int
}
