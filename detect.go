package steg

import (
	"bytes"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

var imageSignatures = [][]byte{
	{0xFF, 0xD8, 0xFF},                            // JPEG
	{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}, // PNG
	[]byte("GIF87a"),                              // GIF
	[]byte("GIF89a"),                              // GIF
	[]byte("BM"),                                  // BMP
	{'I', 'I', '*', 0x00},                         // TIFF, little endian
	{'M', 'M', 0x00, '*'},                         // TIFF, big endian
}

var extensionTypes = map[string]PayloadType{
	".txt":  PayloadText,
	".md":   PayloadText,
	".csv":  PayloadText,
	".png":  PayloadImage,
	".jpg":  PayloadImage,
	".jpeg": PayloadImage,
	".gif":  PayloadImage,
	".bmp":  PayloadImage,
	".tiff": PayloadImage,
	".pdf":  PayloadPDF,
	".exe":  PayloadExe,
	".dll":  PayloadExe,
}

// DetectPayloadType classifies a payload. A known filename extension wins;
// otherwise magic bytes are checked, then the data is treated as text when it
// is valid UTF-8 and at least 80% printable.
func DetectPayloadType(data []byte, filename string) PayloadType {
	if filename != "" {
		if pt, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]; ok {
			return pt
		}
	}

	switch {
	case bytes.HasPrefix(data, []byte("%PDF")):
		return PayloadPDF
	case bytes.HasPrefix(data, []byte("MZ")):
		return PayloadExe
	case isImage(data):
		return PayloadImage
	case isMostlyText(data):
		return PayloadText
	default:
		return PayloadOther
	}
}

func isImage(data []byte) bool {
	for _, sig := range imageSignatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

func isMostlyText(data []byte) bool {
	if len(data) == 0 || !utf8.Valid(data) {
		return false
	}
	var total, printable int
	for _, r := range string(data) {
		total++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
	}
	return printable*5 >= total*4
}
