package types

type Config struct {
	APIAddr      string
	Environment  string
	DatabaseName string

	// IdentityCredentials is the base64 encoded identity provider
	// service account blob, decoded by the idp package.
	IdentityCredentials string
}
