// Package assets embeds the web frontend.
package assets

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

//go:embed static/hit.wav
var hitWAV []byte

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

// Templates parses every page template. It panics on a malformed template,
// which can only happen at build time.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

// Static is the tree served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// HitWAV is the hit sound effect as a 16-bit PCM WAV file.
func HitWAV() []byte {
	return hitWAV
}
