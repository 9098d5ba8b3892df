// Package costs derives deterministic production cost estimates from parsed
// screenplay entities. All figures are USD.
package costs

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultLaborRatePerHour is the fallback hourly rate applied when a talent
// assignment has no agreed or profile rate.
const DefaultLaborRatePerHour = 100.0

var complexityMultipliers = map[string]float64{
	"low":    1,
	"medium": 2,
	"high":   4,
}

var assetBaseCosts = map[string]float64{
	"model":       500,
	"prop":        100,
	"environment": 2000,
	"effect":      1500,
}

var shotDailyRates = map[string]float64{
	"low":    500,
	"medium": 1500,
	"high":   4000,
}

var numberPattern = regexp.MustCompile(`\d+\.?\d*`)

// ComplexityMultiplier maps a complexity grade to its cost multiplier.
// Unknown grades count as medium.
func ComplexityMultiplier(complexity string) float64 {
	if m, ok := complexityMultipliers[strings.ToLower(strings.TrimSpace(complexity))]; ok {
		return m
	}
	return complexityMultipliers["medium"]
}

// AssetBaseCost maps an asset type to its base cost. Unknown types count as
// models.
func AssetBaseCost(assetType string) float64 {
	if c, ok := assetBaseCosts[strings.ToLower(strings.TrimSpace(assetType))]; ok {
		return c
	}
	return assetBaseCosts["model"]
}

// ShotDailyRate maps a complexity grade to the per-day shooting rate.
// Unknown grades count as medium.
func ShotDailyRate(complexity string) float64 {
	if r, ok := shotDailyRates[strings.ToLower(strings.TrimSpace(complexity))]; ok {
		return r
	}
	return shotDailyRates["medium"]
}

// AssetCost estimates an asset from its type and complexity.
func AssetCost(assetType, complexity string) float64 {
	return AssetBaseCost(assetType) * ComplexityMultiplier(complexity)
}

// ShotCost estimates a shot from its complexity and free-form duration.
func ShotCost(complexity, estimatedTime string) float64 {
	if strings.TrimSpace(estimatedTime) == "" {
		estimatedTime = "1 day"
	}
	return ParseTimeToDays(estimatedTime) * ShotDailyRate(complexity)
}

// ParseTimeToDays converts a free-form duration string into days. Ranges like
// "1-2 days" resolve to the midpoint of the two leading numbers. Otherwise
// the first number in the string is taken, scaled by the unit (weeks, months,
// hours); a bare number reads as days. Empty or unparseable input counts as
// one day.
func ParseTimeToDays(value string) float64 {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return 1
	}

	if parts := strings.Split(value, "-"); len(parts) == 2 {
		start, okStart := leadingNumber(parts[0])
		end, okEnd := leadingNumber(parts[1])
		if okStart && okEnd {
			return (start + end) / 2
		}
	}

	if match := numberPattern.FindString(value); match != "" {
		if days, err := strconv.ParseFloat(match, 64); err == nil {
			switch {
			case strings.Contains(value, "week"):
				return days * 7
			case strings.Contains(value, "month"):
				return days * 30
			case strings.Contains(value, "hour"):
				return days / 24
			}
			return days
		}
	}

	return 1
}

// FormatBudgetRange renders a total as a coarse budget band. Totals under a
// thousand print exactly, then the bands widen with the amount.
func FormatBudgetRange(total float64) string {
	if total <= 0 {
		return ""
	}

	switch {
	case total < 1000:
		return fmt.Sprintf("$%.0f", total)
	case total < 10000:
		return fmt.Sprintf("$%.1fk", total/1000)
	case total < 100000:
		lower := int(total/10000) * 10
		return fmt.Sprintf("$%dk-$%dk", lower, lower+10)
	case total < 1000000:
		lower := int(total/50000) * 50
		return fmt.Sprintf("$%dk-$%dk", lower, lower+50)
	default:
		lower := int(total/100000) * 100
		return fmt.Sprintf("$%dk-$%dk", lower, lower+100)
	}
}

func leadingNumber(part string) (float64, bool) {
	fields := strings.Fields(strings.TrimSpace(part))
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
