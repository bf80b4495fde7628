package utils

import (
	"bytes"

	"github.com/Luismorlan/pow_ledger/model"
)

// GetTransactionBytes converts a transaction to its canonical byte form:
// sender, recipient and the amount's decimal text, in this order.
func GetTransactionBytes(t *model.Transaction) []byte {
	buf := &bytes.Buffer{}
	writeString(buf, t.Sender)
	writeString(buf, t.Recipient)
	// Decimal.String never uses an exponent and drops trailing zeros, so 1.0 and 1 hash the same.
	buf.WriteString(t.Amount.String())
	buf.WriteByte(FIELD_TERMINATOR)
	return buf.Bytes()
}
