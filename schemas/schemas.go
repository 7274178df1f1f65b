// Package schemas embeds the JSON Schema documents for catalog and
// prerequisite fixture files.
package schemas

import "embed"

// Schema file names.
const (
	DegreeProgram = "degree_program.schema.json"
	Manifest      = "programs.schema.json"
	Prerequisites = "prerequisites.schema.json"
)

//go:embed *.schema.json
var files embed.FS

// Read returns the raw content of an embedded schema.
func Read(name string) ([]byte, error) {
	return files.ReadFile(name)
}

// Names lists the embedded schema files.
func Names() []string {
	return []string{DegreeProgram, Manifest, Prerequisites}
}
