package model

// QuestionType defines how an answer is parsed
type QuestionType string

const (
	QuestionTypeText           QuestionType = "text"
	QuestionTypeNumber         QuestionType = "number"
	QuestionTypeEnumSingle     QuestionType = "enum-single"
	QuestionTypeEnumMulti      QuestionType = "enum-multi"
	QuestionTypeListFreeText   QuestionType = "list-free-text"
	QuestionTypeListStructured QuestionType = "list-structured"
)

// Step groups questions into sections of the result document
type Step string

const (
	StepIntro                     Step = "intro"
	StepBasicProfile              Step = "basic_profile"
	StepMedicalHistory            Step = "medical_history"
	StepMedicationsAndSupplements Step = "medications_and_supplements"
	StepMiscellaneous             Step = "miscellaneous"
)

// Rule selects a question-specific normalizer
type Rule string

const (
	RuleNone      Rule = ""
	RuleWeight    Rule = "weight"
	RuleHeight    Rule = "height"
	RuleCamFields Rule = "cam_fields"
	RuleWearables Rule = "wearables"
)

// Scope decides which list items a sub-question is asked for
type Scope string

const (
	ScopeAlways   Scope = ""         // every item (structured list fields)
	ScopeSelected Scope = "selected" // items other than Other and None
	ScopeOther    Scope = "other"    // the Other item when it has no note yet
)

// SubQuestion is a follow-up asked about one list item
type SubQuestion struct {
	ID    string       `json:"id"`
	Text  string       `json:"text"` // may contain {condition} or {allergen}
	Type  QuestionType `json:"type"`
	Field ItemField    `json:"field"`
	Scope Scope        `json:"scope,omitempty"`
}

// Question is one entry of the static catalog
type Question struct {
	ID           string        `json:"id"`
	Text         string        `json:"text"`
	Step         Step          `json:"step"`
	Type         QuestionType  `json:"type"`
	Options      []string      `json:"options,omitempty"`
	Field        Field         `json:"field"`
	Rule         Rule          `json:"rule,omitempty"`
	OtherLabel   string        `json:"otherLabel,omitempty"`
	NoneLabel    string        `json:"noneLabel,omitempty"`
	SubQuestions []SubQuestion `json:"subQuestions,omitempty"`
}

// Counted reports whether answering q counts towards progress.
func (q *Question) Counted() bool {
	return q.Step != StepIntro
}

// AppliesTo reports whether sub-question sq should be asked for item.
func (q *Question) AppliesTo(sq SubQuestion, item Selection) bool {
	switch sq.Scope {
	case ScopeOther:
		return item.Label == q.OtherLabel && item.OtherNote == nil
	case ScopeSelected:
		return item.Label != q.OtherLabel && (q.NoneLabel == "" || item.Label != q.NoneLabel)
	default:
		return true
	}
}

// NextSubQuestion returns the first sub-question index at or after from
// that applies to item, or -1.
func (q *Question) NextSubQuestion(item Selection, from int) int {
	for i := from; i < len(q.SubQuestions); i++ {
		if q.AppliesTo(q.SubQuestions[i], item) {
			return i
		}
	}
	return -1
}
