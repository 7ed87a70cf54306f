package usecase

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/nearbuy/backend/internal/domain"
)

// Labeled-field and price patterns for the "**Label:** value" block format.
// The upstream generator does not guarantee strict formatting, so extraction
// is tolerant: non-critical fields fall back to defaults, only a missing
// name or an empty item/price list rejects the block.
var (
	addressPattern  = regexp.MustCompile(`\*\*Address:\*\*\s*(.*)`)
	distancePattern = regexp.MustCompile(`\*\*Distance:\*\*\s*(.*)`)
	reviewsPattern  = regexp.MustCompile(`\*\*Reviews:\*\*\s*(.*)`)
	subtotalPattern = regexp.MustCompile(`\*\*Subtotal:\*\*\s*\$?([\d,]+\.\d{2})`)

	// "- Item Name: $12.99"; price requires a decimal point with two digits
	itemLinePattern = regexp.MustCompile(`-\s*(.*?):\s*\$?([\d,]+\.\d{2})`)

	// Gas grades allow a third decimal digit for sub-cent fuel pricing
	gasLinePattern = regexp.MustCompile(`-\s*(.*?):\s*\$?([\d,]+\.\d{2,3})`)
)

// Fallback defaults for non-critical fields
const (
	defaultAddress  = "Address not found"
	defaultDistance = "0 miles"
	defaultReviews  = "No reviews"
)

// ParseStoreBlock converts one delimited text block into a store record.
// Returns nil for malformed input (no name, or no parseable item lines),
// never a partial record. Item lines that don't match the expected shape are
// skipped, not fatal.
func ParseStoreBlock(block string) *domain.Store {
	name := firstNonEmptyLine(block)
	if name == "" {
		log.Printf("[PARSE] dropping store block with no name line")
		return nil
	}

	store := domain.Store{
		Type:     domain.ResultTypeStore,
		Name:     name,
		Address:  extractLabeledField(block, addressPattern, defaultAddress),
		Distance: extractLabeledField(block, distancePattern, defaultDistance),
		Reviews:  extractLabeledField(block, reviewsPattern, defaultReviews),
		Subtotal: extractSubtotal(block),
	}

	for _, line := range dashLines(block) {
		if item, ok := parseItemLine(line); ok {
			store.Items = append(store.Items, item)
		}
	}

	if len(store.Items) == 0 {
		log.Printf("[PARSE] dropping store block %q: no parseable item lines", name)
		return nil
	}
	return &store
}

// ParseGasBlock converts one delimited text block into a gas-station record.
// Structurally identical to ParseStoreBlock with price-grade pairs instead
// of items; nil when no name or no parseable price lines.
func ParseGasBlock(block string) *domain.GasStation {
	name := firstNonEmptyLine(block)
	if name == "" {
		log.Printf("[PARSE] dropping gas block with no name line")
		return nil
	}

	station := domain.GasStation{
		Type:     domain.ResultTypeGas,
		Name:     name,
		Address:  extractLabeledField(block, addressPattern, defaultAddress),
		Distance: extractLabeledField(block, distancePattern, defaultDistance),
		Reviews:  extractLabeledField(block, reviewsPattern, defaultReviews),
	}

	for _, line := range dashLines(block) {
		if price, ok := parseGasPriceLine(line); ok {
			station.Prices = append(station.Prices, price)
		}
	}

	if len(station.Prices) == 0 {
		log.Printf("[PARSE] dropping gas block %q: no parseable price lines", name)
		return nil
	}
	return &station
}

// firstNonEmptyLine returns the trimmed first non-empty line of the block,
// which by convention is the entity's name.
func firstNonEmptyLine(block string) string {
	for _, line := range strings.Split(block, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// extractLabeledField matches a "**Label:** value" line; a missing label is
// not a parse failure, it yields the fallback.
func extractLabeledField(block string, pattern *regexp.Regexp, fallback string) string {
	if m := pattern.FindStringSubmatch(block); m != nil {
		if value := strings.TrimSpace(m[1]); value != "" {
			return value
		}
	}
	return fallback
}

// extractSubtotal matches the currency-shaped subtotal line, defaulting to 0
// when absent. The AI-supplied subtotal is authoritative at parse time.
func extractSubtotal(block string) float64 {
	m := subtotalPattern.FindStringSubmatch(block)
	if m == nil {
		return 0
	}
	return parsePrice(m[1])
}

// dashLines collects every line beginning with a dash as a candidate
// item/price line.
func dashLines(block string) []string {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "-") {
			lines = append(lines, line)
		}
	}
	return lines
}

func parseItemLine(line string) (domain.Item, bool) {
	m := itemLinePattern.FindStringSubmatch(line)
	if m == nil {
		return domain.Item{}, false
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return domain.Item{}, false
	}
	return domain.Item{Name: name, Price: parsePrice(m[2])}, true
}

func parseGasPriceLine(line string) (domain.GasPrice, bool) {
	m := gasLinePattern.FindStringSubmatch(line)
	if m == nil {
		return domain.GasPrice{}, false
	}
	grade := strings.TrimSpace(m[1])
	if grade == "" {
		return domain.GasPrice{}, false
	}
	return domain.GasPrice{Grade: grade, Price: parsePrice(m[2])}, true
}

// parsePrice converts a currency capture like "1,234.56" to a float. The
// capture groups only admit digits, commas and a decimal point, so a failed
// conversion means a regex bug; treat it as zero rather than panicking.
func parsePrice(s string) float64 {
	value, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		log.Printf("[PARSE] unparseable price %q: %v", s, err)
		return 0
	}
	return value
}
