// Translates the board's human-readable filter labels into the query
// fragments its search URL understands. The table lives in a JSON file so
// a site-side rename is a data change, not a code change.

package filtermenu

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Option pairs a human filter label with its URL query fragment, e.g.
// 全职 -> "jt=1".
type Option struct {
	Label    string
	Fragment string
}

// Menu is the filter option table: category name to its ordered options.
// Loaded once, immutable for the program's lifetime.
type Menu map[string][]Option

// Load reads the option table from a JSON file shaped like
//
//	{"求职类型": [{"全职": "jt=1"}, {"兼职": "jt=2"}]}
//
// one single-pair object per option, so the file keeps the board's
// display order.
func Load(path string) (Menu, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read filter menu: %w", err)
	}
	return Parse(data)
}

// Parse decodes the option table from raw JSON.
func Parse(data []byte) (Menu, error) {
	var raw map[string][]map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse filter menu: %w", err)
	}
	menu := make(Menu, len(raw))
	for category, entries := range raw {
		opts := make([]Option, 0, len(entries))
		for _, entry := range entries {
			for label, fragment := range entry {
				opts = append(opts, Option{Label: label, Fragment: fragment})
			}
		}
		menu[category] = opts
	}
	return menu, nil
}

// UnknownOptionError reports a selection that has no entry in the table.
// A typo'd filter must fail loudly, not compose a URL that silently
// ignores it.
type UnknownOptionError struct {
	Category string
	Option   string
}

func (e *UnknownOptionError) Error() string {
	if e.Option == "" {
		return fmt.Sprintf("unknown filter category %q", e.Category)
	}
	return fmt.Sprintf("unknown filter option %q in category %q", e.Option, e.Category)
}

// Compose appends the query fragments for the chosen options to base and
// returns the full URL. Pure and deterministic: the same menu and
// selections always produce the same URL, and any unknown category or
// label fails with UnknownOptionError before anything is built.
//
// Options picked within one category share a query key and merge into a
// single key=v1,v2 parameter. Categories with an empty selection are
// skipped. Categories are emitted in sorted name order.
func (m Menu) Compose(base string, selections map[string][]string) (string, error) {
	categories := make([]string, 0, len(selections))
	for category := range selections {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var parts []string
	for _, category := range categories {
		labels := selections[category]
		if len(labels) == 0 {
			continue
		}
		opts, ok := m[category]
		if !ok {
			return "", &UnknownOptionError{Category: category}
		}
		key := ""
		values := make([]string, 0, len(labels))
		for _, label := range labels {
			fragment, ok := lookup(opts, label)
			if !ok {
				return "", &UnknownOptionError{Category: category, Option: label}
			}
			k, v, ok := strings.Cut(fragment, "=")
			if !ok || k == "" {
				return "", fmt.Errorf("malformed fragment %q for %s/%s", fragment, category, label)
			}
			if key == "" {
				key = k
			}
			values = append(values, v)
		}
		parts = append(parts, key+"="+strings.Join(values, ","))
	}
	if len(parts) == 0 {
		return base, nil
	}
	tail := strings.Join(parts, "&")
	switch {
	case strings.HasSuffix(base, "?"), strings.HasSuffix(base, "&"):
		return base + tail, nil
	case strings.Contains(base, "?"):
		return base + "&" + tail, nil
	default:
		return base + "?" + tail, nil
	}
}

func lookup(opts []Option, label string) (string, bool) {
	for _, o := range opts {
		if o.Label == label {
			return o.Fragment, true
		}
	}
	return "", false
}
