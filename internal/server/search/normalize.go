package search

import "strings"

const defaultOperator = "equals"

var separators = strings.NewReplacer(" ", "", "_", "", "-", "", "\t", "")

// NormalizeField canonicalizes a field name: "Date Created", "date_created"
// and "dateCreated" all become "datecreated".
func NormalizeField(field string) string {
	return strings.ToLower(separators.Replace(strings.TrimSpace(field)))
}

// NormalizeOperator canonicalizes an operator name the same way as
// NormalizeField; an empty operator means "equals".
func NormalizeOperator(op string) string {
	op = strings.ToLower(separators.Replace(strings.TrimSpace(op)))
	if op == "" {
		return defaultOperator
	}
	return op
}
