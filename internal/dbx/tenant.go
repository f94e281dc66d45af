package dbx

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// TenantClause renders the tenant filter for column col. A nil companyID
// selects the root tenant (rows without a company). argPos is the
// placeholder number the clause may use; the returned args are empty when
// no placeholder was consumed.
func TenantClause(col string, companyID *uuid.UUID, argPos int) (string, []any) {
	if companyID == nil {
		return col + " IS NULL", nil
	}
	return col + " = $" + strconv.Itoa(argPos), []any{companyID.String()}
}

// UUIDList renders "($n, $n+1, ...)" for ids starting at placeholder argPos.
func UUIDList(ids []uuid.UUID, argPos int) (string, []any) {
	ph := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		ph[i] = "$" + strconv.Itoa(argPos+i)
		args[i] = id.String()
	}
	return "(" + strings.Join(ph, ", ") + ")", args
}
