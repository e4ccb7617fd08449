package services

import (
	"strconv"
	"strings"
	"time"

	"sales-dashboard/models"
	"sales-dashboard/utils"
)

// fingerprintSep joins fingerprint parts; it does not appear in addresses.
const fingerprintSep = "|"

var docIDReplacer = strings.NewReplacer("/", "_", "\\", "_")

// Fingerprint derives a sale's identity from its date (epoch milliseconds),
// its lowercased trimmed address and its exact price. Two different sales
// that share all three collapse into one identity.
func Fingerprint(date time.Time, address string, price float64) string {
	return strconv.FormatInt(date.UnixMilli(), 10) +
		fingerprintSep + strings.ToLower(strings.TrimSpace(address)) +
		fingerprintSep + strconv.FormatFloat(price, 'f', -1, 64)
}

// DocumentID turns a fingerprint into a store identifier by replacing
// path separators.
func DocumentID(fingerprint string) string {
	return docIDReplacer.Replace(fingerprint)
}

// Dedupe keeps the first sale seen for each fingerprint, preserving input
// order. Running it on its own output returns the same sequence.
func Dedupe(sales []models.Sale) []models.Sale {
	seen := utils.NewKeySet()
	out := make([]models.Sale, 0, len(sales))
	for _, s := range sales {
		if !seen.Add(s.Fingerprint) {
			continue
		}
		out = append(out, s)
	}
	return out
}
