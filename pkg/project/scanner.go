package project

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/agentdeckhq/agentdeck/pkg/logger"
	"github.com/agentdeckhq/agentdeck/pkg/telemetry"
)

// defaultIgnorePatterns are directory names skipped during the walk.
var defaultIgnorePatterns = []string{
	".git", "node_modules", "vendor", "dist", "build", "target",
	".venv", "venv", "__pycache__", ".next", ".cache", "coverage",
}

// defaultMaxFiles bounds the walk so a scan stays cheap on huge trees.
const defaultMaxFiles = 50000

// extensionToLanguage maps source file extensions to language names.
// Only implementation languages are listed; config and markup formats
// carry no relevance signal of their own.
var extensionToLanguage = map[string]string{
	"go":     "go",
	"py":     "python",
	"js":     "javascript",
	"jsx":    "javascript",
	"ts":     "typescript",
	"tsx":    "typescript",
	"java":   "java",
	"rb":     "ruby",
	"php":    "php",
	"rs":     "rust",
	"c":      "c",
	"h":      "c",
	"cc":     "cpp",
	"cpp":    "cpp",
	"cs":     "csharp",
	"swift":  "swift",
	"kt":     "kotlin",
	"dart":   "dart",
	"scala":  "scala",
	"ex":     "elixir",
	"exs":    "elixir",
	"sql":    "sql",
	"sh":     "shell",
	"vue":    "vue",
	"svelte": "svelte",
}

// Scanner walks a project directory and produces a Profile.
type Scanner struct {
	ignore   []glob.Glob
	maxFiles int
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner) error

// WithIgnorePatterns replaces the default set of ignored directory
// name patterns. Patterns use glob syntax and match directory names,
// not full paths.
func WithIgnorePatterns(patterns ...string) ScannerOption {
	return func(s *Scanner) error {
		compiled, err := compilePatterns(patterns)
		if err != nil {
			return err
		}
		s.ignore = compiled
		return nil
	}
}

// WithMaxFiles bounds how many files the scanner will visit.
func WithMaxFiles(n int) ScannerOption {
	return func(s *Scanner) error {
		if n <= 0 {
			return errors.New("max files must be positive")
		}
		s.maxFiles = n
		return nil
	}
}

// NewScanner creates a project scanner with optional configuration.
func NewScanner(opts ...ScannerOption) (*Scanner, error) {
	defaults, err := compilePatterns(defaultIgnorePatterns)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compile default ignore patterns")
	}

	s := &Scanner{
		ignore:   defaults,
		maxFiles: defaultMaxFiles,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, errors.Wrap(err, "failed to apply scanner option")
		}
	}
	return s, nil
}

func compilePatterns(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid ignore pattern %q", p)
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

// evidence accumulates raw observations during the walk before they
// are distilled into a Profile.
type evidence struct {
	langCounts  map[string]int
	markers     map[string]bool
	frameworks  map[string]bool
	tooling     map[string]bool
	fileVisited int
}

// Scan walks the directory tree and returns the detected profile. The
// result is deterministic for a fixed tree: language order is by file
// count with an alphabetical tiebreak, and framework and tooling lists
// are sorted.
func (s *Scanner) Scan(ctx context.Context, dir string) (*Profile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat project directory %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%s is not a directory", dir)
	}

	profile := &Profile{}
	err = telemetry.WithSpan(ctx, "project.scan", func(ctx context.Context) error {
		telemetry.SetAttributes(ctx, attribute.String("project.dir", dir))

		ev := &evidence{
			langCounts: make(map[string]int),
			markers:    make(map[string]bool),
			frameworks: make(map[string]bool),
			tooling:    make(map[string]bool),
		}
		s.walk(ctx, dir, ev)
		s.inspectManifests(ctx, dir, ev)

		profile.Languages = rankedLanguages(ev.langCounts)
		profile.Frameworks = sortedKeys(ev.frameworks)
		profile.Tooling = sortedKeys(ev.tooling)
		profile.Type = inferType(ev, profile)
		profile.Path = dir
		profile.ScannedAt = time.Now().UTC()

		logger.G(ctx).WithFields(map[string]interface{}{
			"dir":        dir,
			"files":      ev.fileVisited,
			"languages":  profile.Languages,
			"frameworks": profile.Frameworks,
			"type":       profile.Type,
		}).Debug("Scanned project")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *Scanner) walk(ctx context.Context, root string, ev *evidence) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ev.fileVisited >= s.maxFiles {
			return fs.SkipAll
		}

		name := d.Name()
		if d.IsDir() {
			if path != root && s.ignored(name) {
				return fs.SkipDir
			}
			switch name {
			case "cmd":
				ev.markers["cmd-dir"] = true
			case "migrations", "migrate":
				ev.tooling[ToolingDB] = true
			case "test", "tests", "__tests__", "spec":
				ev.tooling[ToolingTests] = true
			case "workflows":
				if filepath.Base(filepath.Dir(path)) == ".github" {
					ev.tooling[ToolingCI] = true
				}
			case ".circleci":
				ev.tooling[ToolingCI] = true
			}
			return nil
		}

		ev.fileVisited++

		switch name {
		case "go.mod", "package.json", "pyproject.toml", "requirements.txt",
			"Cargo.toml", "Gemfile", "composer.json", "pubspec.yaml":
			rel, relErr := filepath.Rel(root, path)
			// Only top-level manifests describe the project itself.
			if relErr == nil && rel == name {
				ev.markers[name] = true
			}
		case "Dockerfile", "docker-compose.yml", "docker-compose.yaml":
			ev.tooling[ToolingDocker] = true
		case ".gitlab-ci.yml":
			ev.tooling[ToolingCI] = true
		case "main.go":
			ev.markers["main.go"] = true
		case "pytest.ini", "jest.config.js", "jest.config.ts", "vitest.config.ts":
			ev.tooling[ToolingTests] = true
		}

		if strings.HasSuffix(name, "_test.go") || strings.HasSuffix(name, ".test.js") ||
			strings.HasSuffix(name, ".test.ts") || strings.HasSuffix(name, "_spec.rb") {
			ev.tooling[ToolingTests] = true
		}

		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
		if lang, ok := extensionToLanguage[ext]; ok {
			ev.langCounts[lang]++
			if lang == "sql" {
				ev.tooling[ToolingDB] = true
			}
		}

		return nil
	})
}

// manifestFrameworks maps dependency names found in package.json to
// framework signals.
var manifestFrameworks = map[string]string{
	"react":         "react",
	"next":          "nextjs",
	"vue":           "vue",
	"svelte":        "svelte",
	"@angular/core": "angular",
	"express":       "express",
	"fastify":       "fastify",
}

// inspectManifests opens the top-level dependency manifests the walk
// found and extracts framework signals from them.
func (s *Scanner) inspectManifests(ctx context.Context, root string, ev *evidence) {
	if ev.markers["package.json"] {
		s.inspectPackageJSON(ctx, filepath.Join(root, "package.json"), ev)
	}

	if ev.markers["requirements.txt"] {
		s.grepManifest(filepath.Join(root, "requirements.txt"), ev, map[string]string{
			"django": "django", "flask": "flask", "fastapi": "fastapi",
		})
	}
	if ev.markers["pyproject.toml"] {
		s.grepManifest(filepath.Join(root, "pyproject.toml"), ev, map[string]string{
			"django": "django", "flask": "flask", "fastapi": "fastapi",
		})
	}
	if ev.markers["Gemfile"] {
		s.grepManifest(filepath.Join(root, "Gemfile"), ev, map[string]string{
			"rails": "rails",
		})
	}
	if ev.markers["go.mod"] {
		s.grepManifest(filepath.Join(root, "go.mod"), ev, map[string]string{
			"github.com/gin-gonic/gin": "gin",
			"github.com/labstack/echo": "echo",
			"github.com/gorilla/mux":   "gorilla",
		})
	}
	if ev.markers["composer.json"] {
		s.grepManifest(filepath.Join(root, "composer.json"), ev, map[string]string{
			"laravel": "laravel",
		})
	}
}

func (s *Scanner) inspectPackageJSON(ctx context.Context, path string, ev *evidence) {
	content, err := os.ReadFile(path)
	if err != nil {
		logger.G(ctx).WithField("path", path).WithError(err).Debug("Failed to read package.json")
		return
	}

	var manifest struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(content, &manifest); err != nil {
		logger.G(ctx).WithField("path", path).WithError(err).Debug("Failed to parse package.json")
		return
	}

	check := func(deps map[string]string) {
		for dep := range deps {
			if fw, ok := manifestFrameworks[dep]; ok {
				ev.frameworks[fw] = true
			}
		}
	}
	check(manifest.Dependencies)
	check(manifest.DevDependencies)

	if _, ok := manifest.DevDependencies["jest"]; ok {
		ev.tooling[ToolingTests] = true
	}
	if _, ok := manifest.DevDependencies["vitest"]; ok {
		ev.tooling[ToolingTests] = true
	}
}

// grepManifest adds a framework signal for each substring found in the
// manifest file. Good enough for line-oriented dependency files.
func (s *Scanner) grepManifest(path string, ev *evidence, needles map[string]string) {
	content, err := os.ReadFile(path)
	if err != nil {
		return
	}
	text := strings.ToLower(string(content))
	for needle, fw := range needles {
		if strings.Contains(text, strings.ToLower(needle)) {
			ev.frameworks[fw] = true
		}
	}
}

func (s *Scanner) ignored(dirName string) bool {
	for _, g := range s.ignore {
		if g.Match(dirName) {
			return true
		}
	}
	return false
}

// rankedLanguages orders detected languages by file count descending,
// ties alphabetical, so the dominant language comes first and the
// order is reproducible.
func rankedLanguages(counts map[string]int) []string {
	langs := make([]string, 0, len(counts))
	for lang := range counts {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool {
		if counts[langs[i]] != counts[langs[j]] {
			return counts[langs[i]] > counts[langs[j]]
		}
		return langs[i] < langs[j]
	})
	return langs
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var frontendFrameworks = map[string]bool{
	"react": true, "nextjs": true, "vue": true, "svelte": true, "angular": true,
}

var serverFrameworks = map[string]bool{
	"express": true, "fastify": true, "django": true, "flask": true,
	"fastapi": true, "rails": true, "gin": true, "echo": true,
	"gorilla": true, "laravel": true,
}

// inferType distills the gathered evidence into a project type. Rules
// are checked in a fixed order so the result is deterministic.
func inferType(ev *evidence, p *Profile) Type {
	for _, lang := range p.Languages {
		if lang == "swift" || lang == "kotlin" || lang == "dart" {
			return TypeMobile
		}
	}

	for _, fw := range p.Frameworks {
		if frontendFrameworks[fw] {
			return TypeWeb
		}
	}
	for _, fw := range p.Frameworks {
		if serverFrameworks[fw] {
			return TypeService
		}
	}

	if ev.markers["go.mod"] {
		if ev.markers["cmd-dir"] || ev.markers["main.go"] {
			if ev.tooling[ToolingDocker] {
				return TypeService
			}
			return TypeCLI
		}
		return TypeLibrary
	}

	hasManifest := ev.markers["package.json"] || ev.markers["pyproject.toml"] ||
		ev.markers["requirements.txt"] || ev.markers["Cargo.toml"] ||
		ev.markers["Gemfile"] || ev.markers["composer.json"]
	if hasManifest {
		if ev.tooling[ToolingDocker] {
			return TypeService
		}
		return TypeLibrary
	}

	return TypeUnknown
}
