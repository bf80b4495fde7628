package utils

import (
	"bytes"
	"encoding/hex"
	"strconv"
)

// Every encoded field is closed by this byte.
const FIELD_TERMINATOR = ';'

func BytesToHex(b []byte) string {
	return hex.EncodeToString(b)
}

func Uint64ToText(i uint64) []byte {
	return strconv.AppendUint(nil, i, 10)
}

// writeUint writes i in base 10 followed by the field terminator.
func writeUint(buf *bytes.Buffer, i uint64) {
	buf.Write(Uint64ToText(i))
	buf.WriteByte(FIELD_TERMINATOR)
}

func writeInt(buf *bytes.Buffer, i int64) {
	buf.Write(strconv.AppendInt(nil, i, 10))
	buf.WriteByte(FIELD_TERMINATOR)
}

// writeString writes s prefixed with its byte length, e.g. "Alice" becomes "5:Alice;".
// The prefix keeps two different strings from ever sharing an encoding.
func writeString(buf *bytes.Buffer, s string) {
	buf.WriteString(strconv.Itoa(len(s)))
	buf.WriteByte(':')
	buf.WriteString(s)
	buf.WriteByte(FIELD_TERMINATOR)
}
