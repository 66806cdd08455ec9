package payment

import "regexp"

// order ids look like TT1234
var orderIDRe = regexp.MustCompile(`TT[0-9]{4}`)

// ExtractOrderID returns the first order id found in free-text
// payment notification content
func ExtractOrderID(content string) (string, bool) {
	id := orderIDRe.FindString(content)
	if id == "" {
		return "", false
	}
	return id, true
}

// ValidOrderID reports whether s is exactly an order id
func ValidOrderID(s string) bool {
	return len(s) == 6 && orderIDRe.FindString(s) == s
}

// PaidCovers reports whether paid amount covers the required one.
// Overpayment is accepted, underpayment is not, there is no tolerance band.
func PaidCovers(paid, required float64) bool {
	return paid >= required
}
