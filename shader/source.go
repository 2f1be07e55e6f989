package shader

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
)

//go:embed wgsl/*.wgsl
var sourceFS embed.FS

// commonRef names the preamble prepended to every effect source.
const commonRef = "common"

// ErrUnknownSource is returned for a shader ref with no embedded source.
var ErrUnknownSource = errors.New("shader: unknown source")

// placeholder matches {{name}} or {{name:default}} in WGSL text.
var placeholder = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*)(?::(-?[0-9]+))?\}\}`)

var sources = sync.OnceValues(func() (map[string]string, error) {
	entries, err := fs.ReadDir(sourceFS, "wgsl")
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		b, err := fs.ReadFile(sourceFS, path.Join("wgsl", e.Name()))
		if err != nil {
			return nil, err
		}
		m[strings.TrimSuffix(e.Name(), ".wgsl")] = string(b)
	}
	return m, nil
})

// Refs returns the ref of every embedded effect shader, sorted.
func Refs() []string {
	m, err := sources()
	if err != nil {
		return nil
	}
	refs := make([]string, 0, len(m))
	for ref := range m {
		if ref != commonRef {
			refs = append(refs, ref)
		}
	}
	slices.Sort(refs)
	return refs
}

// Has reports whether ref names an embedded effect shader.
func Has(ref string) bool {
	m, err := sources()
	if err != nil || ref == commonRef {
		return false
	}
	_, ok := m[ref]
	return ok
}

// Source returns the complete WGSL text for key: the shared preamble
// followed by the effect body with every structural placeholder replaced.
// A placeholder without a value in the key takes its inline default.
func Source(key Key) (string, error) {
	m, err := sources()
	if err != nil {
		return "", err
	}
	body, ok := m[key.Ref]
	if !ok || key.Ref == commonRef {
		return "", fmt.Errorf("%w %q", ErrUnknownSource, key.Ref)
	}

	defines := key.Defines()
	var missing []string
	body = placeholder.ReplaceAllStringFunc(body, func(s string) string {
		sub := placeholder.FindStringSubmatch(s)
		if v, ok := defines[sub[1]]; ok {
			return strconv.Itoa(v)
		}
		if sub[2] != "" {
			return sub[2]
		}
		missing = append(missing, sub[1])
		return s
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("shader %q: no value for %s", key.Ref, strings.Join(missing, ", "))
	}
	return m[commonRef] + "\n" + body, nil
}

// placeholders returns the structural names used by ref's source.
func placeholders(ref string) []string {
	m, err := sources()
	if err != nil {
		return nil
	}
	var names []string
	for _, sub := range placeholder.FindAllStringSubmatch(m[ref], -1) {
		if !slices.Contains(names, sub[1]) {
			names = append(names, sub[1])
		}
	}
	return names
}
