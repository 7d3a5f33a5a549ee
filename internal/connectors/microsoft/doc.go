// Package microsoft provides shared plumbing for Microsoft Graph API
// connectors.
//
// This package provides:
//   - Error translation for Microsoft Graph API responses
//   - Rate limiting for Microsoft Graph API requests
//   - An authenticated HTTP client with Retry-After handling
//
// # Delta Query
//
// Microsoft Graph supports incremental sync via delta queries:
//   - SharePoint drives: /drives/{drive-id}/root/delta
//
// Delta queries return @odata.deltaLink for subsequent requests.
// A 410 Gone response indicates the delta token has expired and a full
// sync is required.
//
// # Rate Limits
//
// Microsoft Graph allows approximately 10,000 requests per 10 minutes
// per app. This package implements conservative rate limiting to avoid
// hitting quotas.
package microsoft
