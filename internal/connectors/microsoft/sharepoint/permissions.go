package sharepoint

import (
	"github.com/harbourview/driftsync/internal/core/domain"
)

// Permission is a Graph permission entry on a drive item.
type Permission struct {
	ID                    string        `json:"id"`
	Roles                 []string      `json:"roles"`
	GrantedToV2           *IdentitySet  `json:"grantedToV2,omitempty"`
	GrantedToIdentitiesV2 []IdentitySet `json:"grantedToIdentitiesV2,omitempty"`
	Link                  *SharingLink  `json:"link,omitempty"`
}

// IdentitySet holds the identities a permission was granted to.
type IdentitySet struct {
	User      *Identity `json:"user,omitempty"`
	Group     *Identity `json:"group,omitempty"`
	SiteGroup *Identity `json:"siteGroup,omitempty"`
}

// Identity is a single user or group identity.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// SharingLink describes a sharing link permission.
type SharingLink struct {
	// Scope is "anonymous", "organization", or "users".
	Scope string `json:"scope"`
	Type  string `json:"type"`
}

// permissionsResponse is the Graph /permissions collection envelope.
type permissionsResponse struct {
	Value []Permission `json:"value"`
}

// MapPermissions translates Graph permission entries into the normalised
// allow-list. Identity grants become "user:<id>"/"group:<id>"; anonymous
// and organization-wide sharing links become "public". Any role grants
// visibility: someone who can write can certainly read.
func MapPermissions(perms []Permission) []string {
	groups := make([]string, 0, len(perms))

	for _, p := range perms {
		if p.Link != nil {
			switch p.Link.Scope {
			case "anonymous", "organization":
				groups = append(groups, domain.PrincipalPublic)
			}
		}

		if p.GrantedToV2 != nil {
			groups = appendIdentitySet(groups, *p.GrantedToV2)
		}
		for _, set := range p.GrantedToIdentitiesV2 {
			groups = appendIdentitySet(groups, set)
		}
	}

	return domain.NormaliseGroups(groups)
}

func appendIdentitySet(groups []string, set IdentitySet) []string {
	if set.User != nil && set.User.ID != "" {
		groups = append(groups, domain.UserPrincipal(set.User.ID))
	}
	if set.Group != nil && set.Group.ID != "" {
		groups = append(groups, domain.GroupPrincipal(set.Group.ID))
	}
	if set.SiteGroup != nil && set.SiteGroup.ID != "" {
		groups = append(groups, domain.GroupPrincipal(set.SiteGroup.ID))
	}
	return groups
}
