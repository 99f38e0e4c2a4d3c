package pathplan

import "strings"

// segmentReplacer replaces characters that are illegal in a single path
// component with underscores.
var segmentReplacer = strings.NewReplacer(
	"<", "_",
	">", "_",
	":", "_",
	"\"", "_",
	"/", "_",
	"\\", "_",
	"|", "_",
	"?", "_",
	"*", "_",
)

// reservedDeviceNames are Windows device names that cannot be used as a file
// or folder name, matched case-insensitively.
var reservedDeviceNames = func() map[string]struct{} {
	names := []string{"CON", "PRN", "AUX", "NUL"}
	for i := 1; i <= 9; i++ {
		names = append(names, "COM"+string(rune('0'+i)), "LPT"+string(rune('0'+i)))
	}
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}()

// SanitizeSegment normalizes one path component: whitespace trimmed, illegal
// characters replaced with underscores, trailing dots stripped, reserved
// device names prefixed with an underscore. The result is never empty and
// never contains a separator. Applying it twice yields the same output.
func SanitizeSegment(segment string) string {
	out := strings.TrimSpace(segment)
	out = segmentReplacer.Replace(out)
	out = strings.TrimRight(out, ".")
	out = strings.TrimSpace(out)
	if out == "" {
		return "_"
	}
	if _, reserved := reservedDeviceNames[strings.ToUpper(out)]; reserved {
		return "_" + out
	}
	return out
}

// fileNameStripper removes filename-illegal characters. Backslashes are not
// stripped here; filenames never contain separators by construction.
var fileNameStripper = strings.NewReplacer(
	"<", "",
	">", "",
	":", "",
	"\"", "",
	"/", "",
	"|", "",
	"?", "",
	"*", "",
)

// SanitizeFileName removes filesystem-illegal characters from a filename.
func SanitizeFileName(name string) string {
	return strings.TrimSpace(fileNameStripper.Replace(name))
}

// SplitSegments breaks a resolved folder string into sanitized path
// components. Both separator styles are honored because templates may carry
// either. Empty components (leading separators, doubled separators) are
// dropped rather than mapped to "_"; they are structure, not names.
func SplitSegments(folder string) []string {
	fields := strings.FieldsFunc(folder, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	segments := make([]string, 0, len(fields))
	for _, field := range fields {
		if strings.TrimSpace(field) == "" {
			continue
		}
		segments = append(segments, SanitizeSegment(field))
	}
	return segments
}
