package normalize

import "strings"

// Selection is one label picked in a multi-select answer. OtherNote
// carries free text attached to the "Other" label.
type Selection struct {
	Label     string  `json:"label"`
	OtherNote *string `json:"other_note"`
}

// EnumMulti maps a multi-select answer onto options.
//
// A noneLabel selection is exclusive: it yields a single None item and
// discards every other token. Tokens equal to otherLabel add an Other
// item; unknown tokens are appended to the Other item's note. Labels in
// the result are unique. An empty noneLabel means the question has no
// None option, so "none" is treated as a plain sentinel.
func EnumMulti(text string, options []string, otherLabel, noneLabel string) []Selection {
	if noneLabel != "" && strings.EqualFold(strings.TrimSpace(text), noneLabel) {
		return []Selection{{Label: noneLabel}}
	}
	tokens := choiceTokens(text, options)
	if noneLabel != "" {
		for _, tok := range tokens {
			if strings.EqualFold(tok, noneLabel) {
				return []Selection{{Label: noneLabel}}
			}
		}
	}

	var (
		result []Selection
		notes  []string
		index  = make(map[string]int)
	)
	add := func(label string) int {
		if i, ok := index[label]; ok {
			return i
		}
		index[label] = len(result)
		result = append(result, Selection{Label: label})
		return len(result) - 1
	}

	for _, tok := range tokens {
		if opt, ok := matchOption(tok, options); ok {
			add(opt)
			continue
		}
		if otherLabel != "" && strings.EqualFold(tok, otherLabel) {
			add(otherLabel)
			continue
		}
		notes = append(notes, tok)
	}

	if len(notes) > 0 && otherLabel != "" {
		i := add(otherLabel)
		note := strings.Join(notes, ", ")
		if prev := result[i].OtherNote; prev != nil && *prev != "" {
			note = *prev + ", " + note
		}
		result[i].OtherNote = &note
	}

	if result == nil {
		return []Selection{}
	}
	return result
}

var camSynonyms = map[string]string{
	"tcm":             "Traditional Chinese Medicine",
	"hanbang":         "Hanyak",
	"korean medicine": "Hanyak",
}

// CamFieldsAll is the meta option that expands to every CAM field.
const CamFieldsAll = "All"

// CamFields keeps tokens naming a known CAM field (after synonym
// substitution). "all" expands to every option except the All option.
func CamFields(text string, options []string) []string {
	fields := make([]string, 0, len(options))
	for _, opt := range options {
		if opt != CamFieldsAll {
			fields = append(fields, opt)
		}
	}

	tokens := choiceTokens(text, options)
	for _, tok := range tokens {
		if strings.EqualFold(tok, "all") {
			return fields
		}
	}

	var out []string
	for _, tok := range tokens {
		if canonical, ok := camSynonyms[strings.ToLower(tok)]; ok {
			tok = canonical
		}
		if opt, ok := matchOption(tok, fields); ok {
			out = append(out, opt)
		}
	}
	return dedupe(out)
}

// WearableNone is the exclusive "no device" option.
const WearableNone = "None"

// Wearables keeps tokens naming a known device. Choosing none yields
// ["None"] and discards the rest.
func Wearables(text string, options []string) []string {
	if strings.EqualFold(strings.TrimSpace(text), WearableNone) {
		return []string{WearableNone}
	}
	tokens := choiceTokens(text, options)
	for _, tok := range tokens {
		if strings.EqualFold(tok, WearableNone) {
			return []string{WearableNone}
		}
	}

	var out []string
	for _, tok := range tokens {
		opt, ok := matchOption(tok, options)
		if ok && opt != WearableNone {
			out = append(out, opt)
		}
	}
	return dedupe(out)
}
