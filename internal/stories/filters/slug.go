package filters

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	spaces    = regexp.MustCompile(`\s+`)
	forbidden = regexp.MustCompile(`[^a-z0-9а-яё-]+`)
	dashes    = regexp.MustCompile(`-+`)
)

// Slugify lower-cases value, turns whitespace into dashes and drops anything
// that is not a latin or cyrillic letter, digit or dash.
func Slugify(value string) string {
	s := strings.ToLower(strings.TrimSpace(value))
	s = spaces.ReplaceAllString(s, "-")
	s = forbidden.ReplaceAllString(s, "")
	s = dashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// UniqueSlug appends -2, -3, ... to base until it is not taken.
func UniqueSlug(base string, taken map[string]struct{}) string {
	if _, ok := taken[base]; !ok {
		return base
	}
	for i := 2; ; i++ {
		candidate := base + "-" + strconv.Itoa(i)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}
