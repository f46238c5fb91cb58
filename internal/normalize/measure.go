package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// KgToLb converts kilograms to pounds.
const KgToLb = 2.20462

// maxMeasure bounds parsed heights and weights; larger numbers are not
// measurements and would overflow int.
const maxMeasure = math.MaxInt32

var (
	feetInchesPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:ft|feet|')\s*(\d*)\s*(?:in|inch|")?`)
	centimetrePattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*cm`)
	kilogramPattern   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*kg`)
	poundPattern      = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:lb|lbs|pounds)?`)
)

// HeightResult is a canonical height plus its total inches when the
// answer was given in feet and inches.
type HeightResult struct {
	Height      *string
	InchesTotal *int
}

// Height canonicalizes "5ft 10in", "5'10\"" or "5 feet" to 5'10" with
// total inches, and "175cm" to "175 cm". Anything else passes through
// as trimmed free text.
func Height(text string) HeightResult {
	if IsSentinel(text) {
		return HeightResult{}
	}
	raw := strings.TrimSpace(text)

	if m := feetInchesPattern.FindStringSubmatch(raw); m != nil {
		feet, err := strconv.Atoi(m[1])
		inches := 0
		if err == nil && m[2] != "" {
			inches, err = strconv.Atoi(m[2])
		}
		if err == nil && feet <= maxMeasure/12 && inches <= maxMeasure-feet*12 {
			height := fmt.Sprintf(`%d'%d"`, feet, inches)
			total := feet*12 + inches
			return HeightResult{Height: &height, InchesTotal: &total}
		}
	}

	if m := centimetrePattern.FindStringSubmatch(raw); m != nil {
		if cm, err := strconv.ParseFloat(m[1], 64); err == nil {
			height := strconv.FormatFloat(cm, 'f', -1, 64) + " cm"
			return HeightResult{Height: &height}
		}
	}

	return HeightResult{Height: &raw}
}

// Weight returns whole pounds. A kg suffix is converted; otherwise the
// first number (optionally followed by lb, lbs or pounds) is rounded.
func Weight(text string) *int {
	if IsSentinel(text) {
		return nil
	}
	lower := strings.ToLower(strings.TrimSpace(text))

	if m := kilogramPattern.FindStringSubmatch(lower); m != nil {
		if kg, err := strconv.ParseFloat(m[1], 64); err == nil {
			return pounds(kg * KgToLb)
		}
	}
	if m := poundPattern.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return pounds(v)
		}
	}
	return nil
}

func pounds(v float64) *int {
	v = math.Round(v)
	if v > maxMeasure {
		return nil
	}
	lb := int(v)
	return &lb
}
