package migrate

import (
	"fmt"
	"regexp"
	"sort"
)

var reIdent = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// checkTable rejects names outside the configured table list, so table
// names can be spliced into SQL.
func checkTable(tables []Table, name string) (Table, error) {
	t, ok := lookupTable(tables, name)
	if !ok {
		return Table{}, fmt.Errorf("unknown table %q", name)
	}
	return t, nil
}

// columns returns the row's column names sorted, minus skip. Every name must
// be a plain lower-case identifier.
func columns(row Row, skip string) ([]string, error) {
	out := make([]string, 0, len(row))
	for k := range row {
		if k == skip {
			continue
		}
		if !reIdent.MatchString(k) {
			return nil, fmt.Errorf("invalid column name %q", k)
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}
