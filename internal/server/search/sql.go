package search

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var columns = map[Field]string{
	FieldID:        "a.id",
	FieldFileName:  "a.file_name",
	FieldFileType:  "a.file_type",
	FieldFileSize:  "a.file_size",
	FieldCreatedAt: "a.created_at",
	FieldFolderID:  "a.folder_id",
	FieldCompanyID: "a.company_id",
	FieldDeleted:   "a.is_deleted",
}

// SQLBuilder renders predicates and sorts as PostgreSQL fragments over
// "assets a" with "asset_tags" holding memberships. Values are bound as
// positional arguments ($1, $2, ...) collected in Args.
type SQLBuilder struct {
	args []any
}

// NewSQLBuilder starts numbering placeholders after the given arguments.
func NewSQLBuilder(args ...any) *SQLBuilder {
	return &SQLBuilder{args: append([]any(nil), args...)}
}

func (b *SQLBuilder) Args() []any { return b.args }

// Bind appends v and returns its placeholder.
func (b *SQLBuilder) Bind(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *SQLBuilder) bindList(n int, at func(i int) any) string {
	ph := make([]string, n)
	for i := range n {
		ph[i] = b.Bind(at(i))
	}
	return "(" + strings.Join(ph, ", ") + ")"
}

// Where renders p as a boolean SQL expression.
func (b *SQLBuilder) Where(p Predicate) (string, error) {
	switch p := p.(type) {
	case Const:
		if p {
			return "TRUE", nil
		}
		return "FALSE", nil
	case And:
		return b.join(p, " AND ", "TRUE")
	case Or:
		return b.join(p, " OR ", "FALSE")
	case Compare:
		return b.compare(p)
	case TagMembership:
		return b.tags(p), nil
	case MetadataMatch:
		return b.metadata(p), nil
	case nil:
		return "TRUE", nil
	}
	return "", fmt.Errorf("unsupported predicate %T", p)
}

func (b *SQLBuilder) join(preds []Predicate, sep, empty string) (string, error) {
	if len(preds) == 0 {
		return empty, nil
	}
	parts := make([]string, 0, len(preds))
	for _, p := range preds {
		s, err := b.Where(p)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

func (b *SQLBuilder) compare(p Compare) (string, error) {
	col, ok := columns[p.Field]
	if !ok {
		return "", fmt.Errorf("unknown field %d", p.Field)
	}

	switch p.Op {
	case OpIsNull:
		return col + " IS NULL", nil
	case OpNotNull:
		return col + " IS NOT NULL", nil
	case OpLike:
		return col + " ILIKE " + b.Bind(p.Value) + ` ESCAPE '\'`, nil
	case OpIn:
		switch values := p.Value.(type) {
		case []string:
			return fmt.Sprintf("lower(%s) IN %s", col, b.bindList(len(values), func(i int) any { return values[i] })), nil
		case []uuid.UUID:
			return fmt.Sprintf("%s IN %s", col, b.bindList(len(values), func(i int) any { return values[i].String() })), nil
		}
		return "", fmt.Errorf("unsupported IN value %T", p.Value)
	}

	var op string
	switch p.Op {
	case OpEq:
		op = "="
	case OpGt:
		op = ">"
	case OpGte:
		op = ">="
	case OpLt:
		op = "<"
	case OpLte:
		op = "<="
	default:
		return "", fmt.Errorf("unsupported operator %d", p.Op)
	}

	switch v := p.Value.(type) {
	case string:
		if op == "=" {
			return fmt.Sprintf("lower(%s) = lower(%s)", col, b.Bind(v)), nil
		}
		return fmt.Sprintf("%s %s %s", col, op, b.Bind(v)), nil
	case uuid.UUID:
		return fmt.Sprintf("%s %s %s", col, op, b.Bind(v.String())), nil
	case int64, bool:
		return fmt.Sprintf("%s %s %s", col, op, b.Bind(v)), nil
	case time.Time:
		return fmt.Sprintf("%s %s %s", col, op, b.Bind(v.UTC())), nil
	}
	return "", fmt.Errorf("unsupported value %T", p.Value)
}

func (b *SQLBuilder) tagExists(list string) string {
	return "EXISTS (SELECT 1 FROM asset_tags t WHERE t.asset_id = a.id AND t.tag_id IN " + list + ")"
}

func (b *SQLBuilder) tags(p TagMembership) string {
	if len(p.IDs) == 0 {
		return "FALSE"
	}
	if p.Mode == TagsAll {
		parts := make([]string, len(p.IDs))
		for i, id := range p.IDs {
			parts[i] = b.tagExists("(" + b.Bind(id.String()) + ")")
		}
		if len(parts) == 1 {
			return parts[0]
		}
		return "(" + strings.Join(parts, " AND ") + ")"
	}
	return b.tagExists(b.bindList(len(p.IDs), func(i int) any { return p.IDs[i].String() }))
}

func (b *SQLBuilder) metadata(p MetadataMatch) string {
	const col = "a.user_metadata"
	switch p.Op {
	case MetaUntagged:
		return fmt.Sprintf(`(%s IS NULL OR %s = '' OR %s NOT ILIKE %s ESCAPE '\')`, col, col, col, b.Bind(p.keyPattern()))
	case MetaNotEquals:
		return fmt.Sprintf(`(%s IS NOT NULL AND %s ILIKE %s ESCAPE '\' AND %s NOT ILIKE %s ESCAPE '\')`,
			col, col, b.Bind(p.keyPattern()), col, b.Bind(p.valuePattern(MetaEquals)))
	}
	return fmt.Sprintf(`(%s IS NOT NULL AND %s ILIKE %s ESCAPE '\')`, col, col, b.Bind(p.valuePattern(p.Op)))
}

// OrderBy renders the ORDER BY list (without the keywords) for s.
func (b *SQLBuilder) OrderBy(s Sort) string {
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}

	var expr string
	switch s.Key {
	case SortName:
		expr = "a.file_name"
	case SortSize:
		expr = "a.file_size"
	case SortType:
		expr = "a.file_type"
	case SortDeletedAt:
		expr = "a.deleted_at"
	case SortMetadata:
		expr = fmt.Sprintf("metadata_value(a.user_metadata, %s)", b.Bind(s.MetadataKey))
	default:
		expr = "a.created_at"
	}

	return fmt.Sprintf("%s %s, a.id ASC", expr, dir)
}
