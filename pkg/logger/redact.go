package logger

import (
	"encoding/json"
	"io"
	"sort"
	"strings"
)

// Redacted replaces every secret found in log output.
const Redacted = "[REDACTED]"

// RedactingWriter scrubs known secret values from everything written through it.
// Each secret is matched both verbatim and in its JSON-escaped form, since
// zerolog escapes string fields.
type RedactingWriter struct {
	out      io.Writer
	replacer *strings.Replacer
}

// NewRedactingWriter wraps out so that none of the given secrets reach it.
// Empty secrets are ignored.
func NewRedactingWriter(out io.Writer, secrets ...string) *RedactingWriter {
	seen := make(map[string]struct{})
	var needles []string
	add := func(s string) {
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		needles = append(needles, s)
	}

	for _, s := range secrets {
		add(s)
		add(jsonEscape(s))
	}

	// Longest first so a secret containing another is replaced whole.
	sort.Slice(needles, func(i, j int) bool { return len(needles[i]) > len(needles[j]) })

	pairs := make([]string, 0, len(needles)*2)
	for _, n := range needles {
		pairs = append(pairs, n, Redacted)
	}

	return &RedactingWriter{
		out:      out,
		replacer: strings.NewReplacer(pairs...),
	}
}

func jsonEscape(s string) string {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return ""
	}
	out := strings.TrimSuffix(b.String(), "\n")
	return strings.TrimSuffix(strings.TrimPrefix(out, `"`), `"`)
}

// Write implements io.Writer. It reports len(p) on success so callers never
// see a short write caused by redaction changing the length.
func (w *RedactingWriter) Write(p []byte) (int, error) {
	if _, err := io.WriteString(w.out, w.replacer.Replace(string(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}
