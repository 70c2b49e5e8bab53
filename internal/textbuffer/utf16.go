package textbuffer

import "unicode/utf8"

// utf16ColumnFromBytes counts UTF-16 code units represented by line, a
// UTF-8-encoded byte slice.
func utf16ColumnFromBytes(line []byte) int {
	var col int
	for i := 0; i < len(line); {
		r, size := utf8.DecodeRune(line[i:])
		if r >= 0x10000 {
			col += 2 // surrogate pair
		} else {
			col++
		}
		i += size
	}
	return col
}

// byteOffsetFromUTF16Column converts a UTF-16 column within line to a
// byte offset from the start of line.
func byteOffsetFromUTF16Column(line []byte, utf16Col int) int {
	var col, byteOffset int
	for byteOffset < len(line) {
		if col >= utf16Col {
			break
		}
		r, size := utf8.DecodeRune(line[byteOffset:])
		if r >= 0x10000 {
			col += 2
		} else {
			col++
		}
		byteOffset += size
	}
	return byteOffset
}
