package charset

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Historical feed archives mix encodings per season, so decoding falls back
// through a fixed list instead of failing on the first bad byte sequence.
var fallbackOrder = []string{"latin-1", "windows-1252", "iso-8859-1", "utf-8-replace"}

// Decoders carry transform state, so each call builds a fresh one.
var charmaps = map[string]*charmap.Charmap{
	"latin-1":      charmap.ISO8859_1,
	"windows-1252": charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
}

// Decode converts raw bytes to a UTF-8 string. The declared encoding is tried
// first, then the fallback list; no byte sequence causes a hard failure. The
// returned name tells the caller which encoding actually applied.
func Decode(raw []byte, declared string) (string, string, error) {
	declared = strings.ToLower(strings.TrimSpace(declared))

	if declared == "" || declared == "utf-8" || declared == "utf8" {
		if utf8.Valid(raw) {
			return string(raw), "utf-8", nil
		}
	} else if decoded, err := decodeWith(raw, declared); err == nil {
		return decoded, declared, nil
	}

	for _, name := range fallbackOrder {
		if name == "utf-8-replace" {
			return strings.ToValidUTF8(string(raw), string(utf8.RuneError)), name, nil
		}
		if decoded, err := decodeWith(raw, name); err == nil {
			return decoded, name, nil
		}
	}

	// Unreachable: utf-8-replace always succeeds.
	return "", "", fmt.Errorf("decode content: no usable encoding")
}

func decodeWith(raw []byte, name string) (string, error) {
	cm, ok := charmaps[name]
	if !ok {
		return "", fmt.Errorf("unknown encoding %q", name)
	}
	out, err := cm.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode as %s: %w", name, err)
	}
	return string(out), nil
}
