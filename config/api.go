package config

// GetAuthSkipperPaths returns a list of paths to skip authentication for
func GetAuthSkipperPaths() []string {
	// Only group routes pass through the auth middleware; /graphql lives on
	// the root router and is public without an entry here.
	return []string{"/api/colorgallery/products/:id"}
}
