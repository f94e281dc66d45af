package search

import (
	"bytes"
	"cmp"
	"strings"

	"github.com/dmitrijs2005/assetcatalog/internal/common"
	"github.com/dmitrijs2005/assetcatalog/internal/server/models"
	"github.com/tidwall/gjson"
)

type SortKey int

const (
	SortDate SortKey = iota
	SortName
	SortSize
	SortType
	SortDeletedAt
	SortMetadata
)

func (k SortKey) String() string {
	switch k {
	case SortName:
		return "name"
	case SortSize:
		return "size"
	case SortType:
		return "type"
	case SortDeletedAt:
		return "deletedAt"
	case SortMetadata:
		return "metadata"
	}
	return "date"
}

// Sort is a resolved ordering. Ties are always broken by ascending id.
type Sort struct {
	Key SortKey
	// MetadataKey is set for SortMetadata.
	MetadataKey string
	Desc        bool
}

// ResolveSort interprets sortBy/sortDir. Unknown keys sort by creation
// date; any direction other than "asc" is descending.
func ResolveSort(sortBy, sortDir string) Sort {
	s := Sort{Desc: !strings.EqualFold(strings.TrimSpace(sortDir), "asc")}

	sortBy = strings.TrimSpace(sortBy)
	if len(sortBy) > len(common.MetadataSortPrefix) &&
		strings.EqualFold(sortBy[:len(common.MetadataSortPrefix)], common.MetadataSortPrefix) {
		if key := strings.TrimSpace(sortBy[len(common.MetadataSortPrefix):]); key != "" {
			s.Key = SortMetadata
			s.MetadataKey = key
			return s
		}
	}

	switch strings.ToLower(sortBy) {
	case "name":
		s.Key = SortName
	case "size":
		s.Key = SortSize
	case "type":
		s.Key = SortType
	case "deletedat":
		s.Key = SortDeletedAt
	default:
		s.Key = SortDate
	}
	return s
}

// MetadataValue extracts the text value stored under key in a metadata
// blob; missing keys and malformed blobs yield "".
func MetadataValue(blob, key string) string {
	if blob == "" || !gjson.Valid(blob) {
		return ""
	}
	return gjson.Get(blob, gjson.Escape(key)).String()
}

// Compare orders a before b (negative), after b (positive) or equal (0).
func (s Sort) Compare(a, b *models.Asset) int {
	c := s.compareKey(a, b)
	if s.Desc {
		c = -c
	}
	if c != 0 {
		return c
	}
	return bytes.Compare(a.ID[:], b.ID[:])
}

func (s Sort) compareKey(a, b *models.Asset) int {
	switch s.Key {
	case SortName:
		return cmp.Compare(a.FileName, b.FileName)
	case SortSize:
		return cmp.Compare(a.FileSize, b.FileSize)
	case SortType:
		return cmp.Compare(a.FileType, b.FileType)
	case SortDeletedAt:
		// Missing timestamps order after present ones.
		switch {
		case a.DeletedAt == nil && b.DeletedAt == nil:
			return 0
		case a.DeletedAt == nil:
			return 1
		case b.DeletedAt == nil:
			return -1
		}
		return a.DeletedAt.Compare(*b.DeletedAt)
	case SortMetadata:
		return cmp.Compare(MetadataValue(a.UserMetadata, s.MetadataKey), MetadataValue(b.UserMetadata, s.MetadataKey))
	}
	return a.CreatedAt.Compare(b.CreatedAt)
}
