package service

import (
	"github.com/shopspring/decimal"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// FormatSize renders a byte count with two decimals in the largest unit (base 1000)
// that keeps the value at or above one, e.g. 1536000 -> "1.54 MB".
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	value := decimal.NewFromInt(bytes)
	thousand := decimal.NewFromInt(1000)

	unit := 0
	for unit < len(sizeUnits)-1 && value.GreaterThanOrEqual(thousand) {
		value = value.Div(thousand)
		unit++
	}

	if unit == 0 {
		return value.StringFixed(0) + " " + sizeUnits[unit]
	}
	return value.StringFixed(2) + " " + sizeUnits[unit]
}
