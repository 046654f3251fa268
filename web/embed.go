// Package web holds the default page and the browser client served with it.
package web

import "embed"

// DefaultPage is served when no PAGE_PATH is configured.
//
//go:embed index.html
var DefaultPage []byte

//go:embed static
var Static embed.FS
