package domain

// ProviderType identifies the provider a connector talks to.
type ProviderType string

const (
	// ProviderLocal is for local filesystem sources.
	ProviderLocal ProviderType = "local"
	// ProviderMicrosoft is for Microsoft Graph services (SharePoint).
	ProviderMicrosoft ProviderType = "microsoft"
	// ProviderAzure is for Azure Storage services (Data Lake Gen2).
	ProviderAzure ProviderType = "azure"
)
