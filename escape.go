package stringsconv

import "strings"

// escaper runs in a single pass, so a backslash it introduces is never re-escaped.
var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
)

var unescaper = strings.NewReplacer(
	`\\`, `\`,
	`\"`, `"`,
	`\n`, "\n",
	`\r`, "\r",
)

// Escape quotes a localized value for a plain-text .strings file.
// Backslash, double quote, LF and CR are escaped; nothing else is touched.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Unescape reverses Escape.
func Unescape(s string) string {
	return unescaper.Replace(s)
}

// FormatLine renders one `"KEY" = "VALUE";` entry terminated by a newline.
func FormatLine(key string, value string) string {
	var b strings.Builder
	b.Grow(len(key) + len(value) + 8)
	b.WriteByte('"')
	b.WriteString(key)
	b.WriteString(`" = "`)
	b.WriteString(Escape(value))
	b.WriteString("\";\n")
	return b.String()
}
