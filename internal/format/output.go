package format

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type encodeFunc func(w io.Writer, v any, pretty bool) error

var encoders = map[string]encodeFunc{
	"json": WriteJSON,
	"edn":  WriteEDN,
	"yaml": WriteYAML,
}

// Names lists the supported output formats.
func Names() []string {
	out := make([]string, 0, len(encoders))
	for k := range encoders {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Write writes v in the named format. An empty name means json.
func Write(w io.Writer, v any, format string, pretty bool) error {
	name := strings.ToLower(strings.TrimSpace(format))
	if name == "" {
		name = "json"
	}
	enc, ok := encoders[name]
	if !ok {
		return fmt.Errorf("unknown format: %s (want %s)", format, strings.Join(Names(), "|"))
	}
	return enc(w, v, pretty)
}

// WriteJSON writes one JSON document per call, newline terminated.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// WriteYAML writes v as a YAML document using its json field names. pretty
// has no effect; YAML is always block style.
func WriteYAML(w io.Writer, v any, _ bool) error {
	x, err := generic(v)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(x); err != nil {
		return err
	}
	return enc.Close()
}

// generic round-trips v through JSON so struct tags decide field names and
// numbers keep their exact text.
func generic(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(strings.NewReader(string(b)))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		return nil, err
	}
	return numbersToNative(x), nil
}

func numbersToNative(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		f, _ := t.Float64()
		return f
	case []any:
		for i := range t {
			t[i] = numbersToNative(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = numbersToNative(t[k])
		}
		return t
	default:
		return v
	}
}
