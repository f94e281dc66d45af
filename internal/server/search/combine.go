package search

import "strings"

const (
	LogicAnd = "AND"
	LogicOr  = "OR"
)

// NormalizeLogic maps anything but a case-insensitive "OR" to AND.
func NormalizeLogic(logic string) string {
	if strings.EqualFold(strings.TrimSpace(logic), LogicOr) {
		return LogicOr
	}
	return LogicAnd
}

// Combine folds predicates with the given logic. With no predicates AND
// yields Const(true) and OR yields Const(false).
func Combine(preds []Predicate, logic string) Predicate {
	if len(preds) == 1 {
		return preds[0]
	}

	if NormalizeLogic(logic) == LogicOr {
		if len(preds) == 0 {
			return Const(false)
		}
		return Or(append([]Predicate(nil), preds...))
	}

	if len(preds) == 0 {
		return Const(true)
	}
	return And(append([]Predicate(nil), preds...))
}
