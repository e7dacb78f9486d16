// Package project detects the characteristics of a project directory
// and represents them as a Profile: the relevance signal the ranker
// scores catalog items against.
package project

import "time"

// Type classifies the overall shape of a project.
type Type string

const (
	TypeWeb     Type = "web"
	TypeService Type = "service"
	TypeCLI     Type = "cli"
	TypeLibrary Type = "library"
	TypeMobile  Type = "mobile"
	TypeUnknown Type = "unknown"
)

// Tooling signal names reported by the scanner.
const (
	ToolingDocker = "docker"
	ToolingCI     = "ci"
	ToolingTests  = "tests"
	ToolingDB     = "db"
)

// Profile is a snapshot of a project's detected characteristics. A nil
// *Profile means no active project; every field of a non-nil Profile
// is optional and the zero value is a valid (empty) profile.
type Profile struct {
	// Languages detected in the project, dominant language first.
	Languages []string `json:"languages,omitempty"`
	// Frameworks detected from dependency manifests and marker files.
	Frameworks []string `json:"frameworks,omitempty"`
	// Type is the inferred project type.
	Type Type `json:"type,omitempty"`
	// Tooling lists detected tooling signals (docker, ci, tests, db).
	Tooling []string `json:"tooling,omitempty"`

	// Path is the scanned directory.
	Path string `json:"path,omitempty"`
	// ScannedAt records when the scan ran.
	ScannedAt time.Time `json:"scannedAt,omitempty"`
}

// HasLanguage reports whether the profile detected the given language.
func (p *Profile) HasLanguage(lang string) bool {
	if p == nil {
		return false
	}
	return contains(p.Languages, lang)
}

// HasFramework reports whether the profile detected the given framework.
func (p *Profile) HasFramework(fw string) bool {
	if p == nil {
		return false
	}
	return contains(p.Frameworks, fw)
}

// HasTooling reports whether the profile detected the given tooling signal.
func (p *Profile) HasTooling(tool string) bool {
	if p == nil {
		return false
	}
	return contains(p.Tooling, tool)
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// Version returns a digest-free identity string for the profile, used
// as a memoization key. Two profiles with the same detected signals
// and scan time share a version.
func (p *Profile) Version() string {
	if p == nil {
		return "no-profile"
	}
	v := string(p.Type)
	for _, l := range p.Languages {
		v += "|l:" + l
	}
	for _, f := range p.Frameworks {
		v += "|f:" + f
	}
	for _, t := range p.Tooling {
		v += "|t:" + t
	}
	return v
}
