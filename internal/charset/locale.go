package charset

import "strings"

// localeVars are the locale variables consulted; any one naming UTF-8 is
// enough, even when an earlier one names another charset.
var localeVars = []string{"LC_ALL", "LC_CTYPE", "LANG"}

// DetectUTF8 reports whether the locale environment advertises UTF-8.
// getenv is usually os.Getenv.
func DetectUTF8(getenv func(string) string) bool {
	for _, name := range localeVars {
		v := strings.ToLower(getenv(name))
		if strings.Contains(v, "utf-8") || strings.Contains(v, "utf8") {
			return true
		}
	}
	return false
}
