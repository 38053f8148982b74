package postgres

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/lib/pq"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isWriteConflict reports unique violations and serialization failures,
// the errors a concurrent writer to the same key can surface.
func isWriteConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case "23505", "40001", "40P01":
		return true
	default:
		return false
	}
}

func encodeJSON(value any, empty string) (string, error) {
	encoded, err := sonic.Marshal(value)
	if err != nil {
		return "", err
	}
	if s := string(encoded); s != "null" {
		return s, nil
	}
	return empty, nil
}

func decodeJSON(raw string, out any) error {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil
	}
	return sonic.Unmarshal([]byte(raw), out)
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
