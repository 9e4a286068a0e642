package service

import (
	"regexp"
	"strings"
)

var scriptBlock = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>|<script\b[^>]*/?>`)

// sanitizeText trims s and removes script blocks.
func sanitizeText(s string) string {
	return strings.TrimSpace(scriptBlock.ReplaceAllString(s, ""))
}

func sanitizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = sanitizeText(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func sanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := sanitizeText(*s)
	return &v
}
