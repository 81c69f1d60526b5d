package steg

import "strings"

// MaskPassphrase hides a passphrase for logs and reports. The first
// character survives, the rest becomes "***", and a trailing "@<address>"
// coordinate suffix stays visible because it carries no key material.
//
//	hunter2        -> h***
//	hunter2@10,10  -> h***@10,10
func MaskPassphrase(passphrase string) string {
	if passphrase == "" {
		return ""
	}
	material, suffix := passphrase, ""
	if at := strings.LastIndexByte(passphrase, '@'); at > 0 && isAddressText(passphrase[at+1:]) {
		material, suffix = passphrase[:at], passphrase[at:]
	}
	runes := []rune(material)
	return string(runes[0]) + "***" + suffix
}

// isAddressText reports whether s could be a start address of any kind.
func isAddressText(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == ',' || r == '.' || r == '-' || r == ' ':
		default:
			return false
		}
	}
	return true
}
