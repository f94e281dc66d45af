// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"github.com/google/uuid"
)

// File type classes an asset can belong to.
const (
	FileTypeImage    = "image"
	FileTypeVideo    = "video"
	FileTypeAudio    = "audio"
	FileTypeDocument = "document"
	FileTypeArchive  = "archive"
	FileTypeOther    = "other"
)

// Asset is one catalogued file.
type Asset struct {
	ID       uuid.UUID
	FileName string
	// FileType is one of the FileType* classes.
	FileType string
	MimeType string
	FileSize int64
	Checksum string

	// StorageKey is the object-storage key of the file contents.
	StorageKey string

	FolderID  *uuid.UUID
	UserID    string
	CompanyID *uuid.UUID

	// UserMetadata is a JSON object of string keys to string values
	// serialized as text, e.g. {"project":"Apollo"}.
	UserMetadata string

	CreatedAt time.Time
	UpdatedAt time.Time

	IsDeleted bool
	DeletedAt *time.Time

	// TagIDs is the set of visual tags assigned to the asset.
	TagIDs []uuid.UUID
}

// HasTag reports whether id is among the asset's tags.
func (a *Asset) HasTag(id uuid.UUID) bool {
	for _, t := range a.TagIDs {
		if t == id {
			return true
		}
	}
	return false
}
