// Package email derives display data from e-mail addresses.
package email

import (
	"strings"
	"unicode"
)

// DisplayName builds a capitalized name from the local part, splitting on
// dots, underscores, dashes and plus signs: "rosa.quispe@coop.bo" gives
// "Rosa Quispe". An address with no usable local part yields "Usuario".
func DisplayName(address string) string {
	localPart := address
	if at := strings.IndexByte(address, '@'); at >= 0 {
		localPart = address[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "Usuario"
	}
	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
