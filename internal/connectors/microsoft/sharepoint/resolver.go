package sharepoint

import (
	"context"
	"fmt"
	"strings"

	"github.com/harbourview/driftsync/internal/connectors/microsoft"
)

// drive is a Graph drive (document library) entry.
type drive struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	DriveType string `json:"driveType"`
}

// SiteRequestPath builds the Graph path segment that addresses a site by
// hostname and server-relative path, e.g.
// "sites/contoso.sharepoint.com:/sites/engineering".
// The root site ("/") is addressed by hostname alone.
func SiteRequestPath(hostname, sitePath string) string {
	if sitePath == "" || sitePath == "/" {
		return "sites/" + hostname
	}
	return "sites/" + hostname + ":" + sitePath
}

// resolveSiteID resolves the configured site URL to a Graph site ID.
func (c *Connector) resolveSiteID(ctx context.Context) (string, error) {
	if c.siteID != "" {
		return c.siteID, nil
	}

	url := fmt.Sprintf("%s/%s?$select=id", c.baseURL, SiteRequestPath(c.config.SiteHostname, c.config.SitePath))

	var site struct {
		ID string `json:"id"`
	}
	if err := c.client.GetJSON(ctx, url, &site); err != nil {
		return "", fmt.Errorf("resolve site %s%s: %w", c.config.SiteHostname, c.config.SitePath, err)
	}
	if site.ID == "" {
		return "", fmt.Errorf("resolve site %s%s: empty site id: %w",
			c.config.SiteHostname, c.config.SitePath, microsoft.ErrNotFound)
	}

	c.siteID = site.ID
	return site.ID, nil
}

// resolveDriveID resolves the configured library name to a drive ID
// within the site.
func (c *Connector) resolveDriveID(ctx context.Context) (string, error) {
	if c.driveID != "" {
		return c.driveID, nil
	}

	siteID, err := c.resolveSiteID(ctx)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/sites/%s/drives", c.baseURL, siteID)

	var drives struct {
		Value []drive `json:"value"`
	}
	if err := c.client.GetJSON(ctx, url, &drives); err != nil {
		return "", fmt.Errorf("list drives for site %s: %w", siteID, err)
	}

	for _, d := range drives.Value {
		if strings.EqualFold(d.Name, c.config.LibraryName) {
			c.driveID = d.ID
			return d.ID, nil
		}
	}

	return "", fmt.Errorf("library %q not found in site %s: %w",
		c.config.LibraryName, siteID, microsoft.ErrNotFound)
}
