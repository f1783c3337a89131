package utils

import (
	"fmt"
	"strings"
)

// NormalizeCompany trims a user-entered company name and collapses inner whitespace.
// "  Tata   Motors " → "Tata Motors"
func NormalizeCompany(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// CacheKey returns a case-insensitive key for a company query.
func CacheKey(name string, n int) string {
	return fmt.Sprintf("news:%s:%d", strings.ToLower(NormalizeCompany(name)), n)
}

// FormatShare formats part/total as a percentage with one decimal.
// e.g., 2 of 3 → "66.7%". A zero total yields "0.0%".
func FormatShare(part, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)*100/float64(total))
}
