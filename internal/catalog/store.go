// Package catalog loads degree programs and serves them as an immutable,
// read-only lookup table.
package catalog

import (
	"embed"
	"encoding/json"
	"io/fs"
	"os"
	"path"

	"github.com/jonathan/coursemate/internal/schemas"
	"github.com/jonathan/coursemate/internal/types"
	embedded "github.com/jonathan/coursemate/schemas"
)

// ManifestFile is the name of the program manifest at the catalog root.
const ManifestFile = "programs.json"

//go:embed data/*.json
var builtin embed.FS

// Store holds degree programs keyed by name. It is never mutated after
// construction and is safe for concurrent readers.
type Store struct {
	programs map[string]*types.DegreeProgram
	names    []string
}

// manifestEntry maps a program name to the file that describes it.
type manifestEntry struct {
	Name string `json:"name"`
	File string `json:"file"`
}

// New builds a store from already parsed programs, in the given order.
func New(programs ...*types.DegreeProgram) (*Store, error) {
	s := &Store{
		programs: make(map[string]*types.DegreeProgram, len(programs)),
		names:    make([]string, 0, len(programs)),
	}
	for _, p := range programs {
		if _, exists := s.programs[p.Name]; exists {
			return nil, &DuplicateProgramError{Name: p.Name}
		}
		s.programs[p.Name] = p
		s.names = append(s.names, p.Name)
	}
	return s, nil
}

// Default loads the catalog compiled into the binary.
func Default() (*Store, error) {
	sub, err := fs.Sub(builtin, "data")
	if err != nil {
		return nil, &LoadError{Path: "data", Message: "embedded catalog missing", Cause: err}
	}
	return Load(sub)
}

// LoadDir loads a catalog from a directory on disk.
func LoadDir(dir string) (*Store, error) {
	return Load(os.DirFS(dir))
}

// Load reads the manifest at the root of fsys and every program it names.
func Load(fsys fs.FS) (*Store, error) {
	manifestData, err := fs.ReadFile(fsys, ManifestFile)
	if err != nil {
		return nil, &LoadError{Path: ManifestFile, Message: "failed to read manifest", Cause: err}
	}
	if err := schemas.ValidateDocument(embedded.Manifest, manifestData); err != nil {
		return nil, &LoadError{Path: ManifestFile, Message: "manifest does not match schema", Cause: err}
	}

	var entries []manifestEntry
	if err := json.Unmarshal(manifestData, &entries); err != nil {
		return nil, &LoadError{Path: ManifestFile, Message: "failed to unmarshal manifest", Cause: err}
	}

	programs := make([]*types.DegreeProgram, 0, len(entries))
	for _, entry := range entries {
		file := path.Clean(entry.File)
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, &LoadError{Path: file, Message: "failed to read program file", Cause: err}
		}

		program, err := ParseProgram(entry.Name, data)
		if err != nil {
			return nil, &LoadError{Path: file, Message: "failed to parse program", Cause: err}
		}
		programs = append(programs, program)
	}

	return New(programs...)
}

// Program returns the named program, or nil when the name is unknown.
func (s *Store) Program(name string) *types.DegreeProgram {
	if s == nil {
		return nil
	}
	return s.programs[name]
}

// Has reports whether the store knows the program.
func (s *Store) Has(name string) bool {
	return s.Program(name) != nil
}

// Names returns the program names in manifest order.
func (s *Store) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}
