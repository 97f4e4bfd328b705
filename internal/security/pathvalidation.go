package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// JoinWithin joins name onto dir and rejects results that escape dir.
// The check is lexical: both paths are cleaned and compared, so it works
// for directories that do not exist yet and for in-memory filesystems.
func JoinWithin(dir, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty file name")
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("absolute file name %q not allowed under %s", name, dir)
	}

	cleanDir := filepath.Clean(dir)
	joined := filepath.Join(cleanDir, name)

	rel, err := filepath.Rel(cleanDir, joined)
	if err != nil {
		return "", fmt.Errorf("path is outside directory: %w", err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected: %s attempts to escape %s", name, dir)
	}
	return joined, nil
}

// SanitizeFilename makes a safe filename from an arbitrary string. Any rune
// other than an ASCII letter, digit, dot, underscore or dash becomes an
// underscore; runs of underscores collapse and the result is capped at 128
// bytes. Leading and trailing dots and underscores are trimmed, so the
// result can never be "." or "..".
func SanitizeFilename(s string) string {
	const maxLen = 128
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if b.Len() >= maxLen {
			break
		}
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
			r == '.', r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}
