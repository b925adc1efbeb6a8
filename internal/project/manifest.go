package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

var (
	// ErrPackageSectionMissing indicates that [package] is missing in a manifest.
	ErrPackageSectionMissing = errors.New("missing [package]")
	// ErrPackageNameMissing indicates that [package].name is missing or empty.
	ErrPackageNameMissing = errors.New("missing [package].name")
	ErrInvalidValue       = errors.New("invalid value")
)

// Manifest is a decoded moltree.toml together with its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Package     PackageConfig     `toml:"package"`
	Sources     SourcesConfig     `toml:"sources"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
	Format      FormatConfig      `toml:"format"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

type SourcesConfig struct {
	Extensions []string `toml:"extensions"`
	Exclude    []string `toml:"exclude"`
	Scripts    []string `toml:"scripts"`
}

type DiagnosticsConfig struct {
	Max int `toml:"max"`
}

type FormatConfig struct {
	Indent string `toml:"indent"`
}

// Defaults returns the configuration used without a manifest.
func Defaults() Config {
	return Config{
		Sources: SourcesConfig{
			Extensions: []string{".view.tree"},
			Exclude:    []string{"node_modules", "-"},
			Scripts:    []string{".ts"},
		},
		Diagnostics: DiagnosticsConfig{Max: 100},
		Format:      FormatConfig{Indent: "tab"},
	}
}

// Load finds moltree.toml above startDir and decodes it. ok is false when no
// manifest exists; the defaults are returned then.
func Load(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return &Manifest{Config: Defaults()}, false, nil
	}
	cfg, err := LoadConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

// LoadConfig decodes the manifest at path. Sections that are not defined
// keep their defaults; defined ones are validated.
func LoadConfig(path string) (Config, error) {
	cfg := Defaults()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	return validate(path, cfg, meta)
}

// DecodeConfig is LoadConfig for in-memory content.
func DecodeConfig(name, content string) (Config, error) {
	cfg := Defaults()
	meta, err := toml.Decode(content, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", name, err)
	}
	return validate(name, cfg, meta)
}

func validate(path string, cfg Config, meta toml.MetaData) (Config, error) {
	if !meta.IsDefined("package") {
		return Config{}, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return Config{}, fmt.Errorf("%s: %w", path, ErrPackageNameMissing)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q: %w", path, undecoded[0].String(), ErrInvalidValue)
	}
	if meta.IsDefined("sources", "extensions") {
		if len(cfg.Sources.Extensions) == 0 {
			return Config{}, fmt.Errorf("%s: [sources].extensions is empty: %w", path, ErrInvalidValue)
		}
		for _, ext := range cfg.Sources.Extensions {
			if !strings.HasPrefix(ext, ".") {
				return Config{}, fmt.Errorf("%s: [sources].extensions entry %q must start with '.': %w", path, ext, ErrInvalidValue)
			}
		}
	}
	if cfg.Diagnostics.Max < 0 {
		return Config{}, fmt.Errorf("%s: [diagnostics].max must not be negative: %w", path, ErrInvalidValue)
	}
	return cfg, nil
}

// IsSource reports whether path has one of the configured moltree extensions.
func (c Config) IsSource(path string) bool {
	return hasAnySuffix(path, c.Sources.Extensions)
}

// IsScript reports whether path is a script that may reference components.
// Declaration files (.d.ts) are not scripts.
func (c Config) IsScript(path string) bool {
	return !strings.HasSuffix(path, ".d.ts") && hasAnySuffix(path, c.Sources.Scripts)
}

// Excluded reports whether a directory entry name is skipped during walks.
func (c Config) Excluded(name string) bool {
	if strings.HasPrefix(name, ".") && name != "." && name != ".." {
		return true
	}
	return slices.Contains(c.Sources.Exclude, name)
}

func hasAnySuffix(path string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(path, s) {
			return true
		}
	}
	return false
}

const manifestTemplate = `[package]
name = %q

[sources]
extensions = [".view.tree"]
exclude = ["node_modules", "-"]
scripts = [".ts"]

[diagnostics]
max = 100

[format]
indent = "tab"
`

// sampleSource is the starter component written by Init.
func sampleSource(name string) string {
	return fmt.Sprintf(`# starter component
$%s_app $mol_view {
	<= title "Hello"
	sub $mol_list {
		? rows
	}
}
`, name)
}

// Init writes moltree.toml and app.view.tree into dir. Existing files are
// left untouched and reported as an error.
func Init(dir, name string) ([]string, error) {
	if name == "" {
		name = sanitizeName(filepath.Base(dir))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	files := []struct {
		name    string
		content string
	}{
		{ManifestName, fmt.Sprintf(manifestTemplate, name)},
		{"app.view.tree", sampleSource(name)},
	}
	written := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if _, err := os.Stat(path); err == nil {
			return written, fmt.Errorf("%s already exists", path)
		}
		if err := os.WriteFile(path, []byte(f.content), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func sanitizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == '-' || r == '.' || r == ' ':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 || (b.String()[0] >= '0' && b.String()[0] <= '9') {
		return "my"
	}
	return b.String()
}
