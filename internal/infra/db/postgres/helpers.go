package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

func jsonOrNull(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeJSON(col sql.NullString, out any) error {
	if !col.Valid || strings.TrimSpace(col.String) == "" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), out)
}

// placeholders builds "$start,$start+1,..." for an IN clause of n values.
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ",")
}
