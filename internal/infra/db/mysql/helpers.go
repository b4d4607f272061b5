package mysql

import (
	"database/sql"
	"encoding/json"
	"strings"
)

// jsonOrNull marshals a value to a JSON column, mapping nil to SQL NULL.
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

// jsonList marshals a string slice to a JSON column, defaulting nil to [].
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

// decodeJSON unmarshals a nullable JSON column into out; NULL is a no-op.
func decodeJSON(col sql.NullString, out any) error {
	if !col.Valid || strings.TrimSpace(col.String) == "" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), out)
}

// placeholders builds "?,?,?" for an IN clause of n values.
func placeholders(n int) string {
	return strings.TrimRight(strings.Repeat("?,", n), ",")
}
