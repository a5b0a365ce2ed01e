package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/tidwall/jsonc"

	"github.com/holon-run/shipit/pkg/project"
)

// Recognised JSR manifest keys.
const (
	keyName    = "name"
	keyVersion = "version"
	keyExports = "exports"
	keyLicense = "license"
)

// JSRManifest is a jsr.json or deno.json document. Recognised fields are
// typed; every other top-level field is kept verbatim in Extra so a
// read-modify-write cycle preserves it.
type JSRManifest struct {
	Name    string
	Version string
	// Exports is a path string or a map of entry points.
	Exports Exports
	License string

	Extra map[string]json.RawMessage

	// Path is the manifest file name relative to the project.
	Path string

	// order is the top-level key order as read.
	order []string
	// raw holds the original encoding of recognised fields so untouched
	// values are written back byte-for-byte.
	raw map[string]json.RawMessage
}

// Exports is the "exports" field: either a single path or a map.
type Exports struct {
	Path string
	Map  map[string]string
}

// IsEmpty reports whether no entry point is declared.
func (e Exports) IsEmpty() bool {
	return e.Path == "" && len(e.Map) == 0
}

func (e Exports) MarshalJSON() ([]byte, error) {
	if e.Map != nil {
		return json.Marshal(e.Map)
	}
	return json.Marshal(e.Path)
}

func (e *Exports) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*e = Exports{}
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &e.Path)
	}
	m := map[string]string{}
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("exports must be a string or an object of strings: %w", err)
	}
	*e = Exports{Map: m}
	return nil
}

// LoadJSRManifest reads the first JSR manifest present in the project.
func LoadJSRManifest(pc *project.Context) (*JSRManifest, error) {
	name := FindJSRManifest(pc)
	if name == "" {
		return nil, fmt.Errorf("no %s or %s found", JSRJSON, DenoJSON)
	}
	data, err := os.ReadFile(pc.Path(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	m, err := ParseJSRManifest(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	m.Path = name
	return m, nil
}

// ParseJSRManifest decodes a JSON or JSONC manifest.
func ParseJSRManifest(data []byte) (*JSRManifest, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("manifest must be a JSON object")
	}

	m := &JSRManifest{
		Extra: map[string]json.RawMessage{},
		raw:   map[string]json.RawMessage{},
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		if _, seen := m.raw[key]; !seen {
			if _, seen := m.Extra[key]; !seen {
				m.order = append(m.order, key)
			}
		}

		switch key {
		case keyName:
			err = decodeString(value, &m.Name)
		case keyVersion:
			err = decodeString(value, &m.Version)
		case keyLicense:
			err = decodeString(value, &m.License)
		case keyExports:
			err = m.Exports.UnmarshalJSON(value)
		default:
			m.Extra[key] = value
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		m.raw[key] = value
	}
	return m, nil
}

// decodeString accepts strings; any other type leaves dst empty so the
// field reports as invalid instead of failing the parse.
func decodeString(data json.RawMessage, dst *string) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*dst = ""
		return nil
	}
	*dst = s
	return nil
}

// Marshal encodes the manifest with two-space indentation. Keys keep their
// original order; new keys follow in name, version, exports, license order.
func (m *JSRManifest) Marshal() ([]byte, error) {
	values := map[string]json.RawMessage{}
	for k, v := range m.Extra {
		values[k] = v
	}

	set := func(key string, present bool, v interface{}) error {
		if !present {
			if orig, ok := m.raw[key]; ok {
				values[key] = orig
			}
			return nil
		}
		enc, err := json.Marshal(v)
		if err != nil {
			return err
		}
		// Reuse the original encoding when the value is unchanged.
		if orig, ok := m.raw[key]; ok && jsonEqual(orig, enc) {
			enc = orig
		}
		values[key] = enc
		return nil
	}
	if err := set(keyName, m.Name != "", m.Name); err != nil {
		return nil, err
	}
	if err := set(keyVersion, m.Version != "", m.Version); err != nil {
		return nil, err
	}
	if err := set(keyExports, !m.Exports.IsEmpty(), m.Exports); err != nil {
		return nil, err
	}
	if err := set(keyLicense, m.License != "", m.License); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(values))
	seen := map[string]bool{}
	for _, k := range m.order {
		if _, ok := values[k]; ok && !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	for _, k := range []string{keyName, keyVersion, keyExports, keyLicense} {
		if _, ok := values[k]; ok && !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var added []string
	for k := range m.Extra {
		if !seen[k] {
			added = append(added, k)
		}
	}
	sort.Strings(added)
	keys = append(keys, added...)

	var buf bytes.Buffer
	buf.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			buf.WriteString(",")
		}
		kb, _ := json.Marshal(k)
		buf.Write(kb)
		buf.WriteString(":")
		buf.Write(values[k])
	}
	buf.WriteString("}")

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteString("\n")
	return out.Bytes(), nil
}

// Save writes the manifest back to its file in the project.
func (m *JSRManifest) Save(pc *project.Context) error {
	if m.Path == "" {
		return fmt.Errorf("manifest has no path")
	}
	data, err := m.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", m.Path, err)
	}
	if err := os.WriteFile(pc.Path(m.Path), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", m.Path, err)
	}
	return nil
}

func jsonEqual(a, b []byte) bool {
	var x, y bytes.Buffer
	if json.Compact(&x, a) != nil || json.Compact(&y, b) != nil {
		return false
	}
	return bytes.Equal(x.Bytes(), y.Bytes())
}
