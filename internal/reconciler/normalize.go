package reconciler

import "strings"

// NormalizeItemName returns the canonical form of an item name used as the
// join key between provider line items and local order items: trimmed of
// surrounding whitespace and lower-cased. Matching purchases by display name
// is a known fragility (a product rename on either side breaks the join
// silently), but it mirrors how the two stores actually record items.
func NormalizeItemName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeEmail returns the canonical form of an email used to key both
// aggregates: trimmed and lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
