package utils

import "fmt"

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// FormatDataSize formats a byte count using 1024-based units, keeping at
// most two decimals and dropping trailing zeros.
func FormatDataSize(bytes int64) string {
	if bytes < 0 {
		return "invalid"
	}

	value := float64(bytes)
	exp := 0
	for value >= 1024 && exp < len(sizeUnits)-1 {
		value /= 1024
		exp++
	}

	switch {
	case value == float64(int64(value)):
		return fmt.Sprintf("%.0f %s", value, sizeUnits[exp])
	case value*10 == float64(int64(value*10)):
		return fmt.Sprintf("%.1f %s", value, sizeUnits[exp])
	default:
		return fmt.Sprintf("%.2f %s", value, sizeUnits[exp])
	}
}
