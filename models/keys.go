package models

import (
	"fmt"
	"regexp"
	"strings"
)

// Cache key prefixes for the family data key families
const (
	KeyPrefixTodos     = "todos:"
	KeyPrefixCalendar  = "calendar:"
	KeyPrefixGroceries = "groceries:"
	KeyPrefixDocs      = "docs:"
)

// Key family names as reported by KeyFamily and SplitKey
const (
	FamilyTodos     = "todos"
	FamilyCalendar  = "calendar"
	FamilyGroceries = "groceries"
	FamilyDocs      = "docs"
	FamilyOther     = "other"
)

// TodoKey returns the cache key for a family member's todo list
func TodoKey(user string) string {
	return KeyPrefixTodos + user
}

// CalendarKey returns the cache key for a family member's agenda
func CalendarKey(user string) string {
	return KeyPrefixCalendar + user
}

// GroceryKey returns the cache key for a shopping list
func GroceryKey(list string) string {
	return KeyPrefixGroceries + list
}

// DocsKey returns the cache key for a document folder
func DocsKey(folder string) string {
	return KeyPrefixDocs + folder
}

// SplitKey breaks a cache key into its family and the name behind the
// prefix. Keys outside the known families report FamilyOther with the whole
// key as the name
func SplitKey(key string) (family, name string) {
	switch {
	case strings.HasPrefix(key, KeyPrefixTodos):
		return FamilyTodos, strings.TrimPrefix(key, KeyPrefixTodos)
	case strings.HasPrefix(key, KeyPrefixCalendar):
		return FamilyCalendar, strings.TrimPrefix(key, KeyPrefixCalendar)
	case strings.HasPrefix(key, KeyPrefixGroceries):
		return FamilyGroceries, strings.TrimPrefix(key, KeyPrefixGroceries)
	case strings.HasPrefix(key, KeyPrefixDocs):
		return FamilyDocs, strings.TrimPrefix(key, KeyPrefixDocs)
	default:
		return FamilyOther, key
	}
}

// KeyFamily returns the family a cache key belongs to
func KeyFamily(key string) string {
	family, _ := SplitKey(key)
	return family
}

// PrefixPattern returns a regex matching every key under the given prefix
func PrefixPattern(prefix string) string {
	return "^" + regexp.QuoteMeta(prefix)
}

// UserKeyPattern returns a regex matching all per-user keys for one user
func UserKeyPattern(user string) string {
	return fmt.Sprintf("^(todos|calendar):%s$", regexp.QuoteMeta(user))
}
