// Package azure provides shared plumbing for Azure Storage REST
// connectors.
//
// This package provides:
//   - Error translation keyed on x-ms-error-code response headers
//   - Rate limiting for Azure Storage requests
//   - An authenticated HTTP client speaking the DFS endpoint dialect
//
// # Pagination
//
// Azure Data Lake Storage Gen2 list operations paginate with an opaque
// continuation token returned in the x-ms-continuation response header;
// the token is echoed back until the header comes back empty.
package azure
