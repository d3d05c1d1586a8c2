package recon

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order. First match wins, so unambiguous layouts
// come before ambiguous day/month ones.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"01/02/2006",
	"01/02/2006 15:04:05",
	"01-02-2006",
	"01/02/06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// ParseDate parses a calendar date from the formats seen across bank exports
// and receipt extractions. The result is truncated to midnight UTC so day-gap
// arithmetic is exact. Returns a ParseError when no layout matches.
func ParseDate(s string) (time.Time, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return time.Time{}, &ParseError{Field: "date", Value: s}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, &ParseError{Field: "date", Value: s}
}

var (
	currencySymbols = strings.NewReplacer("$", "", "€", "", "£", "", "¥", "", "₹", "", ",", "")
	amountJunk      = regexp.MustCompile(`[^0-9.\-]`)
)

// ParseAmount parses a monetary amount, tolerating currency symbols, thousands
// separators, and parenthesized negatives. Returns a ParseError for anything
// that is not a number.
func ParseAmount(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return 0, &ParseError{Field: "amount", Value: s}
	}
	negative := false
	if strings.Contains(cleaned, "(") && strings.Contains(cleaned, ")") {
		negative = true
	}
	cleaned = currencySymbols.Replace(cleaned)
	cleaned = amountJunk.ReplaceAllString(cleaned, "")
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return 0, &ParseError{Field: "amount", Value: s}
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, &ParseError{Field: "amount", Value: s, Err: err}
	}
	if negative && v > 0 {
		v = -v
	}
	return v, nil
}

// Transaction codes banks prepend to descriptions. Stripped before any
// similarity comparison.
var transactionCodes = map[string]bool{
	"pos": true, "visa": true, "mc": true, "debit": true,
	"credit": true, "atm": true, "check": true, "ach": true,
}

// Corporate suffixes that carry no signal for merchant identity.
var merchantSuffixes = map[string]bool{
	"inc": true, "llc": true, "ltd": true, "corp": true,
	"co": true, "company": true,
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9 ]+`)

// MerchantKey canonicalizes merchant text for comparison: lower-cased,
// punctuation and extra whitespace stripped, leading transaction codes and
// trailing store/reference numbers dropped, corporate suffixes removed.
func MerchantKey(s string) string {
	return strings.Join(MerchantTokens(s), " ")
}

// MerchantTokens returns the canonical token set of MerchantKey, in order.
func MerchantTokens(s string) []string {
	lowered := strings.ToLower(strings.TrimSpace(s))
	lowered = nonAlnum.ReplaceAllString(lowered, " ")
	fields := strings.Fields(lowered)

	// Drop leading transaction codes.
	for len(fields) > 0 && transactionCodes[fields[0]] {
		fields = fields[1:]
	}
	// Drop trailing store numbers and reference digits.
	for len(fields) > 1 && isDigits(fields[len(fields)-1]) {
		fields = fields[:len(fields)-1]
	}

	tokens := fields[:0:0]
	for _, f := range fields {
		if merchantSuffixes[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// TokenOverlap computes the Jaccard ratio between the canonical token sets of
// two merchant texts. Returns 0 when either side has no tokens.
func TokenOverlap(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	intersection := 0
	for tok := range ta {
		if tb[tok] {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range MerchantTokens(s) {
		set[tok] = true
	}
	return set
}

// DayGap returns the absolute whole-day difference between two dates,
// ignoring any time-of-day component.
func DayGap(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	gap := int(da.Sub(db).Hours() / 24)
	if gap < 0 {
		gap = -gap
	}
	return gap
}

// sortTransactionIDs keeps rationale strings and group member lists stable.
func sortTransactionIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
