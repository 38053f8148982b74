package app

import (
	"net/url"
	"strings"
)

// normalizeDBURL tags the connection string with application_name so
// sessions show up under the service name in pg_stat_activity. Both URL and
// keyword/value DSNs are handled; an explicit application_name wins.
func normalizeDBURL(raw, applicationName string) string {
	applicationName = strings.TrimSpace(applicationName)
	trimmed := strings.TrimSpace(raw)
	if applicationName == "" || trimmed == "" {
		return raw
	}

	if parsed, ok := parseDBURL(trimmed); ok {
		query := parsed.Query()
		if query.Get("application_name") == "" {
			query.Set("application_name", applicationName)
			parsed.RawQuery = query.Encode()
		}
		return parsed.String()
	}

	if _, ok := dsnValue(trimmed, "application_name"); ok {
		return raw
	}
	return trimmed + " application_name='" + strings.ReplaceAll(applicationName, "'", `\'`) + "'"
}

func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if parsed, ok := parseDBURL(trimmed); ok {
		return strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
	}
	name, _ := dsnValue(trimmed, "dbname")
	return name
}

func parseDBURL(raw string) (*url.URL, bool) {
	if !strings.HasPrefix(raw, "postgres://") && !strings.HasPrefix(raw, "postgresql://") {
		return nil, false
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	return parsed, true
}

// dsnValue reads key from a keyword/value DSN. Quoted values with spaces
// are not supported.
func dsnValue(dsn, key string) (string, bool) {
	prefix := key + "="
	for _, token := range strings.Fields(dsn) {
		if !strings.HasPrefix(token, prefix) {
			continue
		}
		return strings.Trim(strings.TrimPrefix(token, prefix), `"'`), true
	}
	return "", false
}
