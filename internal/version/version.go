// ABOUTME: Version information for HippoLingua
// ABOUTME: Product identity reported by the API, the CLI and mDNS records
package version

const (
	// Version is the release version
	Version = "0.1.0"

	// Product is the user-facing product name
	Product = "HippoLingua"

	// Manufacturer identifies the publisher
	Manufacturer = "Hippo Family Club"

	// Description summarizes the product
	Description = "Multilingual learning audio service"
)
