package export

import "regexp"

// The usual "sane filename" recipe: characters no filesystem wants,
// Windows reserved device names, and the leading/trailing characters
// Windows rejects.
var (
	illegalChars = regexp.MustCompile(`[/\\?%*:|"<>\x7F\x00-\x1F]`)
	reservedName = regexp.MustCompile(
		`(?i)^ ?(CON|CONIN\$|CONOUT\$|PRN|AUX|CLOCK\$|NUL|COM[0-9]|LPT[0-9]|LST|KEYBD\$|SCREEN\$|\$IDLE\$|CONFIG\$)([. ]|$)`)
	illegalEdges = regexp.MustCompile(`^ |[. ]$`)
)

// SanitizeFilename maps an arbitrary metadata string to a filesystem-safe
// path component. It must be applied to every component derived from
// free-form metadata before it is joined into a path. Idempotent.
func SanitizeFilename(name string) string {
	name = illegalChars.ReplaceAllString(name, "-")
	name = reservedName.ReplaceAllString(name, "-")
	name = illegalEdges.ReplaceAllString(name, "-")
	return name
}
