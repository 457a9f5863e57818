// Package appfs embeds the assets the app needs at runtime so that deployed
// binaries do not depend on the checkout layout.
package appfs

import "embed"

//go:embed all:assets migrations
var FS embed.FS
