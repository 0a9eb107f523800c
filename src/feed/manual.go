// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package feed

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
)

// MergeManual overlays hand-maintained entries from dir onto base. Each
// *.json file in dir holds an array of items; an id already present in base
// is replaced, new ids are appended. Files that fail to parse are skipped;
// a broken override file never loses the scraped feed.
func MergeManual(base []Item, dir string) []Item {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return base
	}

	byID := make(map[string]int, len(base))
	for i, it := range base {
		byID[it.ID] = i
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := append([]Item(nil), base...)
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		var overrides []Item
		if err := json.Unmarshal(raw, &overrides); err != nil {
			continue
		}
		for _, ov := range overrides {
			if ov.ID == "" {
				continue
			}
			if i, ok := byID[ov.ID]; ok {
				out[i] = ov
			} else {
				byID[ov.ID] = len(out)
				out = append(out, ov)
			}
		}
	}
	return out
}
