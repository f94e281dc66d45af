package models

import "github.com/google/uuid"

// Scope identifies the caller a request runs on behalf of. A nil CompanyID
// is the root tenant, which only sees rows without a company.
type Scope struct {
	UserID    string
	CompanyID *uuid.UUID
}
