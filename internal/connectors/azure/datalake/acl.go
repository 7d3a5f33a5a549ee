package datalake

import (
	"strings"

	"github.com/harbourview/driftsync/internal/core/domain"
)

// ACLEntry is a single POSIX-style access control entry as returned by
// the getAccessControl operation, e.g. "user:1234-abcd:r-x" or
// "default:group::r--".
type ACLEntry struct {
	// Default is true for default (inherited-by-children) entries.
	Default bool
	// Type is "user", "group", "mask", or "other".
	Type string
	// ObjectID is the AAD object ID of the principal; empty for the
	// owning user/group and for mask/other entries.
	ObjectID string
	// Permissions is the three-character rwx triplet.
	Permissions string
}

// HasRead reports whether the entry grants read access.
func (e ACLEntry) HasRead() bool {
	return len(e.Permissions) == 3 && e.Permissions[0] == 'r'
}

// ParseACL parses the comma-separated x-ms-acl header value into
// entries. Malformed entries are skipped rather than failing the whole
// header: a single odd entry must not hide the document's readable ACL.
func ParseACL(raw string) []ACLEntry {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	entries := make([]ACLEntry, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		fields := strings.Split(part, ":")

		var entry ACLEntry
		if len(fields) == 4 && fields[0] == "default" {
			entry.Default = true
			fields = fields[1:]
		}
		if len(fields) != 3 {
			continue
		}

		entry.Type = fields[0]
		entry.ObjectID = fields[1]
		entry.Permissions = fields[2]

		switch entry.Type {
		case "user", "group", "mask", "other":
		default:
			continue
		}
		if len(entry.Permissions) != 3 {
			continue
		}

		entries = append(entries, entry)
	}

	return entries
}

// MapACL translates ACL entries into the normalised allow-list used for
// security trimming:
//
//   - named user entries with read access -> "user:<id>"
//   - named group entries with read access -> "group:<id>"
//   - a readable "other" entry -> "public"
//   - mask entries, default entries, and the unnamed owning user/group
//     entries carry no principal identifier and are ignored
func MapACL(entries []ACLEntry) []string {
	groups := make([]string, 0, len(entries))

	for _, e := range entries {
		if e.Default || !e.HasRead() {
			continue
		}

		switch e.Type {
		case "user":
			if e.ObjectID != "" {
				groups = append(groups, domain.UserPrincipal(e.ObjectID))
			}
		case "group":
			if e.ObjectID != "" {
				groups = append(groups, domain.GroupPrincipal(e.ObjectID))
			}
		case "other":
			groups = append(groups, domain.PrincipalPublic)
		}
	}

	return domain.NormaliseGroups(groups)
}
