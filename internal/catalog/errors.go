package catalog

import "fmt"

// LoadError represents an error reading or parsing a catalog file
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("catalog load error: %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("catalog load error: %s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// DuplicateProgramError indicates the manifest names a program twice
type DuplicateProgramError struct {
	Name string
}

func (e *DuplicateProgramError) Error() string {
	return fmt.Sprintf("duplicate program in manifest: %s", e.Name)
}
