package cli

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/assetcatalog/internal/server/search"
)

// ParseCondition reads the -where shorthand field:operator:value[:secondary].
//
// "metadata.<key>" addresses a metadata key. Values for tags and ids are
// comma-separated lists; fileType becomes a list when it contains a comma.
// Only the secondary value may contain ':'.
func ParseCondition(s string) (search.Condition, error) {
	parts := strings.SplitN(s, ":", 4)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return search.Condition{}, fmt.Errorf("%w: condition %q: want field:operator[:value[:secondary]]", ErrUsage, s)
	}

	c := search.Condition{Field: parts[0], Operator: parts[1]}
	if len(parts) > 2 {
		c.Value = parts[2]
	}
	if len(parts) > 3 {
		c.SecondaryValue = parts[3]
	}

	if key, ok := strings.CutPrefix(c.Field, "metadata."); ok {
		if key == "" {
			return search.Condition{}, fmt.Errorf("%w: condition %q: empty metadata key", ErrUsage, s)
		}
		c.Field = "metadata"
		c.MetadataField = key
	}

	switch strings.ToLower(c.Field) {
	case "tags", "id", "ids":
		c.Values = splitList(c.Value)
		c.Value = ""
	case "filetype":
		if strings.Contains(c.Value, ",") {
			c.Values = splitList(c.Value)
			c.Value = ""
		}
	}
	return c, nil
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
