// Package docset patches docset bundle metadata around the search index.
package docset

import (
	"fmt"
	"os"
	"path/filepath"

	"howett.net/plist"
)

// InfoPlistPath returns the Info.plist location for a search index stored
// at the conventional <Name>.docset/Contents/Resources/docSet.dsidx path.
func InfoPlistPath(dbPath string) string {
	resources := filepath.Dir(dbPath)
	contents := filepath.Dir(resources)
	return filepath.Join(contents, "Info.plist")
}

// PatchPlist marks the docset containing dbPath as a Dash-family docset so
// Zeal and Dash use the categorized search index. Unrelated plist keys are
// preserved. When the bundle has no Info.plist the returned error wraps
// fs.ErrNotExist, which callers may treat as "not inside a docset".
func PatchPlist(dbPath string) error {
	plistPath := InfoPlistPath(dbPath)

	data, err := os.ReadFile(plistPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", plistPath, err)
	}

	var info map[string]interface{}
	if _, err := plist.Unmarshal(data, &info); err != nil {
		return fmt.Errorf("failed to parse %s: %w", plistPath, err)
	}

	info["isDashDocset"] = true
	info["DashDocSetFamily"] = "doxygen"

	out, err := plist.MarshalIndent(info, plist.XMLFormat, "\t")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", plistPath, err)
	}

	if err := os.WriteFile(plistPath, out, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", plistPath, err)
	}
	return nil
}
