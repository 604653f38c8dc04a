package service

import (
	"net/url"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/iliyamo/notestack/internal/apperr"
)

// Field limits shared by notes and bookmarks.
const (
	MaxTitleLen   = 100
	MaxContentLen = 5000
	MaxTagLen     = 50
)

// checkText trims s and enforces required/max-length rules, counting runes.
func checkText(field, s string, required bool, max int) (string, error) {
	s = strings.TrimSpace(s)
	if required && s == "" {
		return "", apperr.Validation(field + " is required")
	}
	if utf8.RuneCountInString(s) > max {
		return "", apperr.Validation(field + " is too long")
	}
	return s, nil
}

// cleanTags trims tags, drops empty and repeated ones and enforces the tag
// length limit. The result is never nil.
func cleanTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if utf8.RuneCountInString(t) > MaxTagLen {
			return nil, apperr.Validation("Tag is too long")
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}

// SplitTags parses a comma separated tag list such as "go,db".
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

func checkURL(raw string) (string, error) {
	raw, err := checkText("URL", raw, true, MaxContentLen)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", apperr.Validation("URL must be an absolute http or https address")
	}
	return raw, nil
}
