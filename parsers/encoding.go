package parsers

import (
	"bytes"
	"log"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeText returns data as UTF-8 text. Input that is not valid UTF-8 is
// assumed to be in the Windows Arabic code page, which is what older Excel
// installs write when saving CSV.
func DecodeText(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}

	decoded, _, err := transform.Bytes(charmap.Windows1256.NewDecoder(), data)
	if err != nil {
		log.Printf("Windows-1256 decode failed, using raw bytes: %v", err)
		return string(data)
	}
	return string(decoded)
}
