package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/holon-run/shipit/pkg/log"
	"github.com/holon-run/shipit/pkg/project"
)

// Manifest file names.
const (
	PackageJSON = "package.json"
	JSRJSON     = "jsr.json"
	DenoJSON    = "deno.json"
)

// JSRManifestFiles are probed in order; the first present file wins.
var JSRManifestFiles = []string{JSRJSON, DenoJSON}

type packageJSON struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Private bool   `json:"private"`
}

// Detect probes the project for every registry manifest. Probes are
// independent and never fail: an unreadable or incomplete manifest only
// means that registry is not eligible. Private npm packages are excluded.
func Detect(pc *project.Context, logger log.Logger) []Descriptor {
	var found []Descriptor
	if d, err := DetectNPM(pc); err != nil {
		logger.Debug("npm manifest not eligible", "reason", err.Error())
	} else {
		found = append(found, d)
	}
	if d, err := DetectJSR(pc); err != nil {
		logger.Debug("jsr manifest not eligible", "reason", err.Error())
	} else {
		found = append(found, d)
	}
	return found
}

// DetectNPM reads package.json.
func DetectNPM(pc *project.Context) (Descriptor, error) {
	data, err := os.ReadFile(pc.Path(PackageJSON))
	if err != nil {
		return Descriptor{}, fmt.Errorf("failed to read %s: %w", PackageJSON, err)
	}
	var pkg packageJSON
	if err := json.Unmarshal(jsonc.ToJSON(data), &pkg); err != nil {
		return Descriptor{}, fmt.Errorf("failed to parse %s: %w", PackageJSON, err)
	}
	if strings.TrimSpace(pkg.Name) == "" || strings.TrimSpace(pkg.Version) == "" {
		return Descriptor{}, fmt.Errorf("%s needs both name and version", PackageJSON)
	}
	if pkg.Private {
		return Descriptor{}, fmt.Errorf("%s is marked private", PackageJSON)
	}
	return Descriptor{
		Kind:         NPM,
		Name:         pkg.Name,
		Version:      pkg.Version,
		ManifestPath: PackageJSON,
	}, nil
}

// DetectJSR reads the first JSR manifest present.
func DetectJSR(pc *project.Context) (Descriptor, error) {
	m, err := LoadJSRManifest(pc)
	if err != nil {
		return Descriptor{}, err
	}
	if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Version) == "" {
		return Descriptor{}, fmt.Errorf("%s needs both name and version", m.Path)
	}
	return Descriptor{
		Kind:         JSR,
		Name:         m.Name,
		Version:      m.Version,
		ManifestPath: m.Path,
	}, nil
}

// FindJSRManifest returns the JSR manifest file name present in the
// project, or "" when there is none.
func FindJSRManifest(pc *project.Context) string {
	for _, name := range JSRManifestFiles {
		if pc.Exists(name) {
			return name
		}
	}
	return ""
}
