package resources

import "embed"

//go:embed migrations i18n seed
var FS embed.FS
