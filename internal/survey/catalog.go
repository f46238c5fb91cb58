package survey

import (
	"strings"

	"surveyassistant/internal/model"
)

var MedicalConditions = []string{
	"Anxiety disorder", "Arthritis", "Asthma", "Bleeding disorder", "Blood clots/DVT",
	"Cancer", "Coronary artery disease", "Claustrophobic", "Diabetes (insulin)",
	"Diabetes (non-insulin)", "Dialysis", "Diverticulitis", "Fibromyalgia", "Gout",
	"Has pacemaker", "Heart attack", "Heart murmur", "Hiatal hernia/reflux disease",
	"HIV/AIDS", "High cholesterol", "High blood pressure", "Overactive thyroid",
	"Kidney disease", "Kidney stones", "Leg/foot ulcers", "Liver disease", "Osteoporosis",
	"Polio", "Pulmonary embolism", "Reflux/ulcers", "Stroke", "Tuberculosis",
	"Other", "None",
}

var Ancestries = []string{
	"African-American", "East Asian", "Northern European/Caucasian",
	"Hispanic/Latino", "Native American", "Pacific Islander", "South Asian",
	"Mediterranean", "Middle Eastern", "Ashkenazi Jewish", "Other",
}

var Allergens = []string{
	"Artificial Colors & Dyes (FD&C Yellow No. 5)", "Nuts", "Dairy", "Egg", "Gluten",
	"Soy", "Fish (e.g., Salmon, Tuna)", "Shellfish (e.g., Shrimp, Crab, Lobster)",
	"Sesame", "Corn", "Gelatin", "Other Allergens",
}

var CamFields = []string{
	"Functional Medicine", "Ayurveda", "Traditional Chinese Medicine",
	"Homeopathy", "Hanyak", "All",
}

var Wearables = []string{
	"OURA Ring", "Apple Watch", "Google Pixel Watch", "Fitbit", "None",
}

func structuredFields() []model.SubQuestion {
	return []model.SubQuestion{
		{ID: "name", Text: "Name:", Type: model.QuestionTypeText, Field: model.ItemName},
		{ID: "dose_strength", Text: "Dose/Strength:", Type: model.QuestionTypeText, Field: model.ItemDoseStrength},
		{ID: "frequency", Text: "Frequency:", Type: model.QuestionTypeText, Field: model.ItemFrequency},
		{ID: "purpose", Text: "Purpose:", Type: model.QuestionTypeText, Field: model.ItemPurpose},
	}
}

// defaultCatalog is built once and never mutated.
var defaultCatalog = []model.Question{
	{
		ID:   "intro",
		Text: "Hi, I'm your survey assistant. We'll go through 12 quick questions (~3 minutes). No rush. Ready?",
		Step: model.StepIntro,
		Type: model.QuestionTypeText,
	},
	{
		ID:    "age",
		Text:  "How old are you?",
		Step:  model.StepBasicProfile,
		Type:  model.QuestionTypeNumber,
		Field: model.FieldAge,
	},
	{
		ID:    "weight",
		Text:  "What is your weight in pounds? (If in kg, please say so.)",
		Step:  model.StepBasicProfile,
		Type:  model.QuestionTypeText,
		Field: model.FieldWeightPounds,
		Rule:  model.RuleWeight,
	},
	{
		ID:    "height",
		Text:  "What is your height? (Feet/inches or cm are fine.)",
		Step:  model.StepBasicProfile,
		Type:  model.QuestionTypeText,
		Field: model.FieldHeight,
		Rule:  model.RuleHeight,
	},
	{
		ID:    "sex_assigned_at_birth",
		Text:  "What was your sex assigned at birth?",
		Step:  model.StepBasicProfile,
		Type:  model.QuestionTypeText,
		Field: model.FieldSexAssignedAtBirth,
	},
	{
		ID:         "ancestries",
		Text:       "Which ancestries apply to you? (Choose from the list: " + strings.Join(Ancestries, ", ") + ". If 'Other', please specify.)",
		Step:       model.StepBasicProfile,
		Type:       model.QuestionTypeEnumMulti,
		Options:    Ancestries,
		Field:      model.FieldAncestries,
		OtherLabel: "Other",
		SubQuestions: []model.SubQuestion{
			{ID: "other_note", Text: "Please specify the other ancestry.", Type: model.QuestionTypeText, Field: model.ItemOtherNote, Scope: model.ScopeOther},
		},
	},
	{
		ID:         "conditions",
		Text:       "Please select any conditions from this list: " + strings.Join(MedicalConditions, ", ") + ". (If 'Other', specify. If 'None', choose only 'None'.)",
		Step:       model.StepMedicalHistory,
		Type:       model.QuestionTypeEnumMulti,
		Options:    MedicalConditions,
		Field:      model.FieldConditions,
		OtherLabel: "Other",
		NoneLabel:  "None",
		SubQuestions: []model.SubQuestion{
			{ID: "start_year", Text: "What is the start year (YYYY) for {condition}? If unknown, say 'unknown'.", Type: model.QuestionTypeNumber, Field: model.ItemStartYear, Scope: model.ScopeSelected},
			{ID: "other_note", Text: "Please specify the other condition.", Type: model.QuestionTypeText, Field: model.ItemOtherNote, Scope: model.ScopeOther},
		},
	},
	{
		ID:    "surgeries_or_hospital_stays",
		Text:  "Any surgeries or overnight hospital stays? (List as \"procedure (year)\". Say \"none\" if none.)",
		Step:  model.StepMedicalHistory,
		Type:  model.QuestionTypeListFreeText,
		Field: model.FieldSurgeries,
	},
	{
		ID:         "allergies",
		Text:       "Do you have any allergies? (Choose from allergens list: " + strings.Join(Allergens, ", ") + ". If \"Other Allergens\", please specify allergen name(s). If \"none\", record none.)",
		Step:       model.StepMedicalHistory,
		Type:       model.QuestionTypeEnumMulti,
		Options:    Allergens,
		Field:      model.FieldAllergies,
		OtherLabel: "Other Allergens",
		NoneLabel:  "None",
		SubQuestions: []model.SubQuestion{
			{ID: "reaction", Text: "What reaction do you have to {allergen}?", Type: model.QuestionTypeText, Field: model.ItemReaction, Scope: model.ScopeSelected},
			{ID: "other_note", Text: "Please specify the other allergen(s).", Type: model.QuestionTypeText, Field: model.ItemOtherNote, Scope: model.ScopeOther},
		},
	},
	{
		ID:           "medications",
		Text:         "Do you take any medications? (For each: Name, Dose/Strength, Frequency, Purpose. Say \"none\" if none.)",
		Step:         model.StepMedicationsAndSupplements,
		Type:         model.QuestionTypeListStructured,
		Field:        model.FieldMedications,
		SubQuestions: structuredFields(),
	},
	{
		ID:           "supplements",
		Text:         "Do you take any supplements? (For each: Name, Dose/Strength, Frequency, Purpose. Say \"none\" if none.)",
		Step:         model.StepMedicationsAndSupplements,
		Type:         model.QuestionTypeListStructured,
		Field:        model.FieldSupplements,
		SubQuestions: structuredFields(),
	},
	{
		ID:      "cam_fields",
		Text:    "Which complementary & alternative medicine (CAM) fields do you prefer? (Options: " + strings.Join(CamFields, ", ") + ". \"All\" expands.)",
		Step:    model.StepMiscellaneous,
		Type:    model.QuestionTypeEnumMulti,
		Options: CamFields,
		Field:   model.FieldCamFields,
		Rule:    model.RuleCamFields,
	},
	{
		ID:      "wearable_devices",
		Text:    "Do you use any of these wearable devices? (" + strings.Join(Wearables, ", ") + ".)",
		Step:    model.StepMiscellaneous,
		Type:    model.QuestionTypeEnumMulti,
		Options: Wearables,
		Field:   model.FieldWearableDevices,
		Rule:    model.RuleWearables,
	},
}

// DefaultCatalog returns the shared read-only question catalog.
func DefaultCatalog() []model.Question {
	return defaultCatalog
}

// CountedQuestions returns how many catalog entries count towards progress.
func CountedQuestions(catalog []model.Question) int {
	n := 0
	for i := range catalog {
		if catalog[i].Counted() {
			n++
		}
	}
	return n
}
