package main

// Default limits for CLI commands.
const (
	DefaultListLimit   = 50
	DefaultExportLimit = 10000
)

// Valid output formats.
var (
	validExportFormats    = []string{"json", "csv", "markdown"}
	validRelationsFormats = []string{"tree", "list", "json"}
)

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
