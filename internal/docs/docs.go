// Package docs embeds the user guide shown by `cardwrite docs`.
package docs

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed topics/*.md
var topicsFS embed.FS

// Topics lists the topic names in sorted order.
func Topics() []string {
	entries, err := fs.ReadDir(topicsFS, "topics")
	if err != nil {
		return []string{}
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".md"); ok && name != "" {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Get returns a topic's markdown. Names are case-insensitive.
func Get(topic string) (string, bool) {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" || strings.ContainsAny(topic, `/\`) {
		return "", false
	}
	b, err := topicsFS.ReadFile(path.Join("topics", topic+".md"))
	if err != nil {
		return "", false
	}
	return string(b), true
}
