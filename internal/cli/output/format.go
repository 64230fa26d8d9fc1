package output

import (
	"fmt"
	"strings"
)

// FormatHeader renders a markdown header of the given level.
func FormatHeader(level int, text string) string {
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue renders a markdown key-value bullet.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("- **%s:** %s", key, value)
}
