package domain

import (
	"sort"
	"strings"
)

// Principal identifiers used in document allow-lists.
//
// A document's AllowedGroups holds entries of the form "user:<id>",
// "group:<id>", or the literal "public". The search layer trims results
// by intersecting the caller's principals with this list.
const (
	// PrincipalPublic marks a document readable by everyone.
	PrincipalPublic = "public"

	principalUserPrefix  = "user:"
	principalGroupPrefix = "group:"
)

// UserPrincipal formats a user object ID as a principal identifier.
func UserPrincipal(objectID string) string {
	return principalUserPrefix + objectID
}

// GroupPrincipal formats a group object ID as a principal identifier.
func GroupPrincipal(objectID string) string {
	return principalGroupPrefix + objectID
}

// IsValidPrincipal reports whether s is a well-formed principal identifier.
func IsValidPrincipal(s string) bool {
	if s == PrincipalPublic {
		return true
	}
	if rest, ok := strings.CutPrefix(s, principalUserPrefix); ok {
		return rest != ""
	}
	if rest, ok := strings.CutPrefix(s, principalGroupPrefix); ok {
		return rest != ""
	}
	return false
}

// NormaliseGroups deduplicates an allow-list, drops empty and malformed
// entries, and sorts the result so equal ACLs compare equal.
// A nil input stays nil: "unknown ACL" and "empty ACL" are different states.
func NormaliseGroups(groups []string) []string {
	if groups == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(groups))
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		g = strings.TrimSpace(g)
		if !IsValidPrincipal(g) {
			continue
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}

	sort.Strings(out)
	return out
}
