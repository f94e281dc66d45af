package search

import (
	"strings"

	"github.com/google/uuid"
)

// builder turns one condition into a predicate, or nil when the condition
// cannot be used.
type builder func(c Condition) Predicate

// route picks the builder for a canonical field name; nil for unknown fields.
func route(c Condition) builder {
	switch NormalizeField(c.Field) {
	case "filename":
		return func(c Condition) Predicate { return buildString(FieldFileName, c) }
	case "filetype":
		if len(c.Values) > 0 {
			return func(c Condition) Predicate { return buildStringList(FieldFileType, c.Values) }
		}
		return func(c Condition) Predicate { return buildString(FieldFileType, c) }
	case "tags":
		return buildTags
	case "filesize":
		return buildFileSize
	case "datecreated", "createdat":
		return buildDate
	case "metadata":
		return buildMetadata
	case "id", "ids":
		return buildIDs
	}
	return nil
}

// BuildCondition returns the predicate for one condition, or nil when the
// field is unknown or the condition is malformed.
func BuildCondition(c Condition) Predicate {
	b := route(c)
	if b == nil {
		return nil
	}
	return b(c)
}

func buildString(field Field, c Condition) Predicate {
	value := strings.TrimSpace(c.Value)
	if value == "" {
		return nil
	}

	var match Compare
	switch NormalizeOperator(c.Operator) {
	case "contains":
		match = Compare{Field: field, Op: OpLike, Value: "%" + EscapeLike(value) + "%"}
	case "startswith":
		match = Compare{Field: field, Op: OpLike, Value: EscapeLike(value) + "%"}
	case "endswith":
		match = Compare{Field: field, Op: OpLike, Value: "%" + EscapeLike(value)}
	default:
		match = Compare{Field: field, Op: OpEq, Value: value}
	}

	return And{Compare{Field: field, Op: OpNotNull}, match}
}

func buildStringList(field Field, values []string) Predicate {
	seen := make(map[string]struct{}, len(values))
	normalized := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		normalized = append(normalized, v)
	}
	if len(normalized) == 0 {
		return nil
	}

	return And{Compare{Field: field, Op: OpNotNull}, Compare{Field: field, Op: OpIn, Value: normalized}}
}

// parseUUIDs keeps the parseable identifiers, first occurrence order.
func parseUUIDs(values []string) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(values))
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(strings.TrimSpace(v))
		if err != nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func buildTags(c Condition) Predicate {
	ids := parseUUIDs(c.Values)
	if len(ids) == 0 {
		return nil
	}

	mode := TagsAny
	if NormalizeOperator(c.Operator) == "containsall" {
		mode = TagsAll
	}
	return TagMembership{Mode: mode, IDs: ids}
}

func buildFileSize(c Condition) Predicate {
	switch NormalizeOperator(c.Operator) {
	case "greaterthan":
		n, ok := ConvertToBytes(c.Value, c.Unit)
		if !ok {
			return nil
		}
		return Compare{Field: FieldFileSize, Op: OpGt, Value: n}
	case "lessthan":
		n, ok := ConvertToBytes(c.Value, c.Unit)
		if !ok {
			return nil
		}
		return Compare{Field: FieldFileSize, Op: OpLt, Value: n}
	case "between":
		fromRaw, toRaw, ok := mergeRange(c)
		if !ok {
			return nil
		}
		from, fromOK := ConvertToBytes(fromRaw, c.Unit)
		to, toOK := ConvertToBytes(toRaw, c.Unit)
		if !fromOK || !toOK {
			return nil
		}
		lower, upper := min(from, to), max(from, to)
		return And{
			Compare{Field: FieldFileSize, Op: OpGte, Value: lower},
			Compare{Field: FieldFileSize, Op: OpLte, Value: upper},
		}
	default:
		n, ok := ConvertToBytes(c.Value, c.Unit)
		if !ok {
			return nil
		}
		return Compare{Field: FieldFileSize, Op: OpEq, Value: n}
	}
}

func buildDate(c Condition) Predicate {
	op := NormalizeOperator(c.Operator)
	if op == "between" {
		return buildDateBetween(c)
	}

	t, ok := ParseDate(c.Value)
	if !ok {
		return nil
	}

	switch op {
	case "after":
		return Compare{Field: FieldCreatedAt, Op: OpGte, Value: StartOfDay(t)}
	case "before":
		return Compare{Field: FieldCreatedAt, Op: OpLte, Value: EndOfDay(t)}
	case "on":
		return And{
			Compare{Field: FieldCreatedAt, Op: OpGte, Value: StartOfDay(t)},
			Compare{Field: FieldCreatedAt, Op: OpLte, Value: EndOfDay(t)},
		}
	default:
		return Compare{Field: FieldCreatedAt, Op: OpEq, Value: t}
	}
}

func buildDateBetween(c Condition) Predicate {
	fromRaw, toRaw, ok := mergeRange(c)
	if !ok {
		return nil
	}
	from, fromOK := ParseDate(fromRaw)
	to, toOK := ParseDate(toRaw)

	switch {
	case fromOK && toOK:
		if from.After(to) {
			from, to = to, from
		}
		return And{
			Compare{Field: FieldCreatedAt, Op: OpGte, Value: StartOfDay(from)},
			Compare{Field: FieldCreatedAt, Op: OpLte, Value: EndOfDay(to)},
		}
	case fromOK:
		return Compare{Field: FieldCreatedAt, Op: OpGte, Value: StartOfDay(from)}
	case toOK:
		return Compare{Field: FieldCreatedAt, Op: OpLte, Value: EndOfDay(to)}
	}
	return nil
}

var metadataOps = map[string]MetadataOp{
	"is":         MetaEquals,
	"equals":     MetaEquals,
	"isnot":      MetaNotEquals,
	"startswith": MetaStartsWith,
	"endswith":   MetaEndsWith,
	"contains":   MetaContains,
}

func buildMetadata(c Condition) Predicate {
	key := strings.TrimSpace(c.MetadataField)
	if key == "" {
		return nil
	}

	op := NormalizeOperator(c.Operator)
	if op == "isuntagged" {
		return MetadataMatch{Key: key, Op: MetaUntagged}
	}

	value := strings.TrimSpace(c.Value)
	if value == "" {
		return nil
	}

	metaOp, ok := metadataOps[op]
	if !ok {
		metaOp = MetaContains
	}
	return MetadataMatch{Key: key, Op: metaOp, Value: value}
}

func buildIDs(c Condition) Predicate {
	values := c.Values
	if strings.TrimSpace(c.Value) != "" {
		values = append(append([]string(nil), values...), c.Value)
	}

	ids := parseUUIDs(values)
	if len(ids) == 0 {
		return nil
	}
	return Compare{Field: FieldID, Op: OpIn, Value: ids}
}
