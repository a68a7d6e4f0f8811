package utils

import (
	"strconv"
	"strings"
)

// FormatRupiah formats whole rupiah with dot thousand separators.
// Example: 30000000 -> "Rp 30.000.000"
func FormatRupiah(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	// Tambahkan pemisah ribuan
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	return "Rp " + sign + b.String()
}
