// Package appfs exposes the embedded static assets of the app.
package appfs

import "embed"

//go:embed migrations
var FS embed.FS
