package sharepoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSiteRequestPath(t *testing.T) {
	tests := []struct {
		name     string
		hostname string
		sitePath string
		want     string
	}{
		{"site with path", "contoso.sharepoint.com", "/sites/engineering",
			"sites/contoso.sharepoint.com:/sites/engineering"},
		{"root site", "contoso.sharepoint.com", "/", "sites/contoso.sharepoint.com"},
		{"empty path", "contoso.sharepoint.com", "", "sites/contoso.sharepoint.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SiteRequestPath(tt.hostname, tt.sitePath))
		})
	}
}
