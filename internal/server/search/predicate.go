package search

import (
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/assetcatalog/internal/server/models"
	"github.com/google/uuid"
)

// Predicate is an immutable boolean test over an asset. The concrete
// variants are And, Or, Const, Compare, TagMembership and MetadataMatch;
// each can be evaluated in memory (Eval) or rendered to SQL (SQLBuilder).
type Predicate interface {
	Eval(a *models.Asset) bool
	predicate()
}

// And matches when every member matches. An empty And matches everything.
type And []Predicate

// Or matches when any member matches. An empty Or matches nothing.
type Or []Predicate

// Const matches everything (true) or nothing (false).
type Const bool

// Field is an asset column a Compare can test.
type Field int

const (
	FieldID Field = iota
	FieldFileName
	FieldFileType
	FieldFileSize
	FieldCreatedAt
	FieldFolderID
	FieldCompanyID
	FieldDeleted
)

func (f Field) String() string {
	switch f {
	case FieldID:
		return "id"
	case FieldFileName:
		return "fileName"
	case FieldFileType:
		return "fileType"
	case FieldFileSize:
		return "fileSize"
	case FieldCreatedAt:
		return "createdAt"
	case FieldFolderID:
		return "folderId"
	case FieldCompanyID:
		return "companyId"
	case FieldDeleted:
		return "isDeleted"
	}
	return "unknown"
}

// Op is a comparison operator.
type Op int

const (
	OpEq Op = iota
	OpGt
	OpGte
	OpLt
	OpLte
	// OpLike matches a LIKE pattern (escape character '\'), case-insensitive.
	OpLike
	// OpIn tests membership; Value is []string (lowercased) or []uuid.UUID.
	OpIn
	OpIsNull
	OpNotNull
)

// Compare tests one column against Value. The dynamic type of Value
// depends on the field: string for file name and type, int64 for file
// size, time.Time for creation time, uuid.UUID for identifiers and bool
// for the deleted flag. String equality is case-insensitive.
type Compare struct {
	Field Field
	Op    Op
	Value any
}

type TagMode int

const (
	// TagsAny matches assets holding at least one of the tags.
	TagsAny TagMode = iota
	// TagsAll matches assets holding every one of the tags.
	TagsAll
)

// TagMembership tests the asset's tag set.
type TagMembership struct {
	Mode TagMode
	IDs  []uuid.UUID
}

type MetadataOp int

const (
	MetaContains MetadataOp = iota
	MetaEquals
	MetaNotEquals
	MetaStartsWith
	MetaEndsWith
	MetaUntagged
)

// MetadataMatch is a substring test over the serialized metadata blob.
// A value that itself contains another key's marker text (`"other":"`)
// can produce false positives.
type MetadataMatch struct {
	Key   string
	Op    MetadataOp
	Value string
}

func (And) predicate()           {}
func (Or) predicate()            {}
func (Const) predicate()         {}
func (Compare) predicate()       {}
func (TagMembership) predicate() {}
func (MetadataMatch) predicate() {}

func (p And) Eval(a *models.Asset) bool {
	for _, c := range p {
		if !c.Eval(a) {
			return false
		}
	}
	return true
}

func (p Or) Eval(a *models.Asset) bool {
	for _, c := range p {
		if c.Eval(a) {
			return true
		}
	}
	return false
}

func (p Const) Eval(*models.Asset) bool { return bool(p) }

func (p Compare) Eval(a *models.Asset) bool {
	switch p.Field {
	case FieldFileName:
		return p.evalString(a.FileName)
	case FieldFileType:
		return p.evalString(a.FileType)
	case FieldFileSize:
		return p.evalInt(a.FileSize)
	case FieldCreatedAt:
		return p.evalTime(a.CreatedAt)
	case FieldID:
		id := a.ID
		return p.evalUUID(&id)
	case FieldFolderID:
		return p.evalUUID(a.FolderID)
	case FieldCompanyID:
		return p.evalUUID(a.CompanyID)
	case FieldDeleted:
		v, ok := p.Value.(bool)
		return ok && p.Op == OpEq && a.IsDeleted == v
	}
	return false
}

func (p Compare) evalString(s string) bool {
	switch p.Op {
	case OpNotNull:
		return true
	case OpIsNull:
		return false
	case OpIn:
		values, _ := p.Value.([]string)
		return slices.Contains(values, strings.ToLower(s))
	}

	v, ok := p.Value.(string)
	if !ok {
		return false
	}
	switch p.Op {
	case OpEq:
		return strings.EqualFold(s, v)
	case OpLike:
		return likeMatch(s, v)
	}
	return false
}

func (p Compare) evalInt(n int64) bool {
	v, ok := p.Value.(int64)
	if !ok {
		return false
	}
	switch p.Op {
	case OpEq:
		return n == v
	case OpGt:
		return n > v
	case OpGte:
		return n >= v
	case OpLt:
		return n < v
	case OpLte:
		return n <= v
	}
	return false
}

func (p Compare) evalTime(t time.Time) bool {
	v, ok := p.Value.(time.Time)
	if !ok {
		return false
	}
	switch p.Op {
	case OpEq:
		return t.Equal(v)
	case OpGt:
		return t.After(v)
	case OpGte:
		return !t.Before(v)
	case OpLt:
		return t.Before(v)
	case OpLte:
		return !t.After(v)
	}
	return false
}

func (p Compare) evalUUID(id *uuid.UUID) bool {
	switch p.Op {
	case OpIsNull:
		return id == nil
	case OpNotNull:
		return id != nil
	}
	if id == nil {
		return false
	}
	switch p.Op {
	case OpEq:
		v, ok := p.Value.(uuid.UUID)
		return ok && *id == v
	case OpIn:
		values, _ := p.Value.([]uuid.UUID)
		return slices.Contains(values, *id)
	}
	return false
}

func (p TagMembership) Eval(a *models.Asset) bool {
	if len(p.IDs) == 0 {
		return false
	}
	if p.Mode == TagsAll {
		for _, id := range p.IDs {
			if !a.HasTag(id) {
				return false
			}
		}
		return true
	}
	for _, id := range p.IDs {
		if a.HasTag(id) {
			return true
		}
	}
	return false
}

func (p MetadataMatch) Eval(a *models.Asset) bool {
	blob := a.UserMetadata
	switch p.Op {
	case MetaUntagged:
		return blob == "" || !likeMatch(blob, p.keyPattern())
	case MetaNotEquals:
		return blob != "" && likeMatch(blob, p.keyPattern()) && !likeMatch(blob, p.valuePattern(MetaEquals))
	}
	return blob != "" && likeMatch(blob, p.valuePattern(p.Op))
}

// keyPattern matches a blob holding the key at all.
func (p MetadataMatch) keyPattern() string {
	return `%"` + EscapeLike(p.Key) + `":%`
}

// valuePattern matches a blob whose value for the key satisfies op.
func (p MetadataMatch) valuePattern(op MetadataOp) string {
	marker := `"` + EscapeLike(p.Key) + `":"`
	value := EscapeLike(p.Value)

	switch op {
	case MetaEquals:
		return "%" + marker + value + `"%`
	case MetaStartsWith:
		return "%" + marker + value + `%"%`
	case MetaEndsWith:
		return "%" + marker + "%" + value + `"%`
	default:
		return "%" + marker + "%" + value + `%"%`
	}
}
