// Package web embeds the single-page analysis form served by the API.
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:static
var static embed.FS

// IndexFile is the page served for "/" and unknown UI paths.
const IndexFile = "index.html"

// DistFS returns the embedded form rooted at static/. The directory is
// compiled in, so fs.Sub cannot fail here.
func DistFS() fs.FS {
	sub, _ := fs.Sub(static, "static")
	return sub
}
