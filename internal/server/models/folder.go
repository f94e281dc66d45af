package models

import (
	"time"

	"github.com/google/uuid"
)

type Folder struct {
	ID        uuid.UUID
	Name      string
	ParentID  *uuid.UUID
	UserID    string
	CompanyID *uuid.UUID
	CreatedAt time.Time
}
