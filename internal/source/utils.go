package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	xunicode "golang.org/x/text/encoding/unicode"
)

// ErrBadEncoding is returned when a BOM-marked UTF-16 file cannot be decoded.
var ErrBadEncoding = errors.New("invalid UTF-16 content")

// normalizeCRLF replaces every "\r\n" with "\n" and leaves lone '\r' alone.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !slices.Contains(content, '\r') {
		return content, false
	}

	out := make([]byte, 0, len(content))
	changed := false

	i := 0
	for i < len(content) {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i += 2
			changed = true
		} else {
			out = append(out, content[i])
			i++
		}
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) < 3 {
		return content, false
	}
	if content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}
	return content, false
}

// decodeUTF16 transcodes content to UTF-8 when it starts with a UTF-16 BOM.
func decodeUTF16(content []byte) ([]byte, bool, error) {
	if len(content) < 2 {
		return content, false, nil
	}
	var endian xunicode.Endianness
	switch {
	case content[0] == 0xFF && content[1] == 0xFE:
		endian = xunicode.LittleEndian
	case content[0] == 0xFE && content[1] == 0xFF:
		endian = xunicode.BigEndian
	default:
		return content, false, nil
	}
	dec := xunicode.UTF16(endian, xunicode.ExpectBOM).NewDecoder()
	out, err := dec.Bytes(content)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrBadEncoding, err)
	}
	return out, true, nil
}

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, len(content)/32+1)
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i))
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	if len(lineIdx) == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}

	// бинпоиск: находим наибольший lineIdx[i] < off
	lo, hi := 0, len(lineIdx)-1
	for lo <= hi {
		mid := (lo + hi) >> 1
		if lineIdx[mid] < off {
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	line := hi // индекс последнего '\n' перед off

	if line < 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	startOff := lineIdx[line] + 1
	return LineCol{Line: uint32(line + 2), Col: off - startOff + 1}
}

func normalizePath(p string) string {
	// единый вид в кроссплатформенных дифах
	return filepath.ToSlash(filepath.Clean(p))
}
