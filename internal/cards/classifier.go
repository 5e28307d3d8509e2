package cards

import "strings"

// Network identifies the card scheme detected from the number prefix.
type Network string

const (
	NetworkVisa       Network = "visa"
	NetworkMastercard Network = "mastercard"
	NetworkAmex       Network = "amex"
	NetworkDiscover   Network = "discover"
	NetworkUnknown    Network = "unknown"
)

func (n Network) String() string {
	return string(n)
}

// madaBINs lists 6-digit bank identification numbers of the Saudi mada debit
// scheme. mada cards are co-branded, so a match reports visa as the network
// with the domestic flag set.
var madaBINs = map[string]struct{}{
	"407197": {}, "407395": {}, "422817": {}, "422818": {},
	"422819": {}, "428331": {}, "439954": {}, "440647": {},
	"440795": {}, "445564": {}, "446404": {}, "446672": {},
	"457865": {}, "457997": {}, "468540": {}, "468541": {},
	"474491": {}, "483010": {}, "483011": {}, "483012": {},
	"504300": {}, "521076": {}, "524130": {}, "529415": {},
	"530906": {}, "531095": {}, "532013": {}, "535825": {},
	"543357": {}, "549760": {}, "585264": {}, "585265": {},
	"588845": {}, "588846": {}, "588848": {}, "588850": {},
	"589206": {}, "604906": {}, "605141": {}, "636120": {},
	"968201": {}, "968202": {}, "968203": {}, "968204": {},
	"968205": {}, "968206": {}, "968207": {}, "968208": {},
	"968209": {}, "968210": {}, "968211": {},
}

// CleanNumber strips spaces so formatted input ("4111 1111 ...") can be
// classified and validated.
func CleanNumber(number string) string {
	return strings.ReplaceAll(strings.TrimSpace(number), " ", "")
}

// Classify maps a digit string to its card network and reports whether it
// belongs to the mada domestic debit scheme. The mada BIN check runs first
// and wins over the generic prefix patterns. Total function: any input,
// including garbage, yields NetworkUnknown at worst.
func Classify(number string) (Network, bool) {
	digits := CleanNumber(number)

	if len(digits) >= 6 {
		if _, ok := madaBINs[digits[:6]]; ok {
			return NetworkVisa, true
		}
	}

	switch {
	case strings.HasPrefix(digits, "4"):
		return NetworkVisa, false
	case matchesMastercard(digits):
		return NetworkMastercard, false
	case strings.HasPrefix(digits, "34") || strings.HasPrefix(digits, "37"):
		return NetworkAmex, false
	case strings.HasPrefix(digits, "6011") || strings.HasPrefix(digits, "65"):
		return NetworkDiscover, false
	default:
		return NetworkUnknown, false
	}
}

// Mastercard covers the 51-55 range plus the newer 2221-2720 BIN range.
func matchesMastercard(digits string) bool {
	if len(digits) >= 2 {
		if two := prefixValue(digits, 2); two >= 51 && two <= 55 {
			return true
		}
	}
	if len(digits) >= 4 {
		if four := prefixValue(digits, 4); four >= 2221 && four <= 2720 {
			return true
		}
	}
	return false
}

func prefixValue(digits string, n int) int {
	value := 0
	for _, r := range digits[:n] {
		if r < '0' || r > '9' {
			return -1
		}
		value = value*10 + int(r-'0')
	}
	return value
}

// LastFour returns the trailing four digits used for transaction records.
// Shorter input is returned as-is; the full number is never persisted.
func LastFour(number string) string {
	digits := CleanNumber(number)
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}
