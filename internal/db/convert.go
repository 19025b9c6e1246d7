package db

import (
	"database/sql"
	"strings"
	"time"
)

// timeLayout is the fixed timestamp format completion dates are stored in.
const timeLayout = "2006-01-02 15:04:05"

// tagSep separates tag values in the tags column. The unit separator cannot
// appear in user-entered text, so tags containing commas survive a round
// trip. Encoded values always start with tagSep, which is how decodeTags
// tells them apart from rows written by the old comma-joined encoding.
const tagSep = "\x1f"

func encodeTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(timeLayout), Valid: true}
}

func decodeTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(timeLayout, s.String, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return tagSep + strings.Join(tags, tagSep)
}

func decodeTags(s string) []string {
	if s == "" {
		return nil
	}
	if strings.Contains(s, tagSep) {
		return strings.Split(strings.TrimPrefix(s, tagSep), tagSep)
	}
	// legacy comma-joined encoding
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		tags = append(tags, strings.TrimSpace(p))
	}
	return tags
}
