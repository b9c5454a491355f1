// Package assets embeds the default deck rules and the SQL migrations so the
// server runs without any files next to the binary.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed deck.yaml sql/*.sql
var FS embed.FS

// DeckRules returns the embedded default deck definition.
func DeckRules() ([]byte, error) {
	return FS.ReadFile("deck.yaml")
}

// Migrations returns the embedded sql directory.
func Migrations() (fs.FS, error) {
	return fs.Sub(FS, "sql")
}
