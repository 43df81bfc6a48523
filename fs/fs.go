// Package appfs embeds static assets shipped with the application binaries.
package appfs

import "embed"

//go:embed migrations
var FS embed.FS
