package search

import (
	"github.com/dmitrijs2005/assetcatalog/internal/server/models"
	"github.com/google/uuid"
)

// Request is an advanced search query.
type Request struct {
	// Logic is "AND" (default) or "OR", case-insensitive.
	Logic      string      `json:"logic"`
	Conditions []Condition `json:"conditions"`
	SortBy     string      `json:"sortBy"`
	SortDir    string      `json:"sortDir"`
	// Page is 1-based; values below 1 become 1.
	Page int `json:"page"`
	// PageSize below 1 means no paging.
	PageSize int        `json:"pageSize"`
	FolderID *uuid.UUID `json:"folderId,omitempty"`
}

// Condition is one field test.
type Condition struct {
	Field          string   `json:"field"`
	Operator       string   `json:"operator"`
	Value          string   `json:"value"`
	SecondaryValue string   `json:"secondaryValue"`
	Values         []string `json:"values"`
	Range          *Range   `json:"range,omitempty"`
	MetadataField  string   `json:"metadataField"`
	// MetadataLabel is display-only.
	MetadataLabel string `json:"metadataLabel"`
	Unit          string `json:"unit"`
}

type Range struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Result is one page of matches.
type Result struct {
	Assets  []*models.Asset
	Total   int
	Page    int
	HasMore bool
}
