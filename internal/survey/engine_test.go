package survey

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"surveyassistant/internal/model"
	"surveyassistant/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestEngine(opts ...Option) *Engine {
	n := 0
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("it_%d", n)
		}),
	}
	return NewEngine(DefaultCatalog(), append(base, opts...)...)
}

func submitAll(t *testing.T, e *Engine, answers ...string) Reply {
	t.Helper()
	var r Reply
	for _, a := range answers {
		require.NotEqual(t, ModeFinished, e.Mode(), "survey finished before answer %q", a)
		r = e.Submit(a)
	}
	return r
}

func decode(t *testing.T, raw json.RawMessage) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	return doc
}

func TestEngineStartsAtIntro(t *testing.T) {
	e := newTestEngine()
	assert.Equal(t, ModeMainCatalog, e.Mode())
	assert.Equal(t, DefaultCatalog()[0].Text, e.Prompt())
	assert.Equal(t, model.Progress{TotalQuestions: 12}, e.Progress())

	r := e.Submit("ready")
	assert.Equal(t, "How old are you?", r.Prompt)
	assert.Equal(t, 0, r.Progress.Answered)
	assert.False(t, r.Done)
}

func TestEngineFullSurvey(t *testing.T) {
	e := newTestEngine()

	r := submitAll(t, e, "yes", "42", "80kg", "5 ft 10 in", "Female", "East Asian, Basque")
	assert.Contains(t, r.Prompt, "Please select any conditions")

	r = e.Submit("Cancer, Other")
	assert.Equal(t, ModeSubQuestionDrain, r.Mode)
	assert.Equal(t, "What is the start year (YYYY) for Cancer? If unknown, say 'unknown'.", r.Prompt)
	require.Len(t, e.Pending(), 2)

	r = e.Submit("2010")
	assert.Equal(t, "Please specify the other condition.", r.Prompt)
	doc := e.Document()
	require.Len(t, doc.MedicalHistory.Conditions, 2)
	assert.Equal(t, 2010, *doc.MedicalHistory.Conditions[0].StartYear)

	r = e.Submit("Lupus")
	assert.Equal(t, ModeMainCatalog, r.Mode)
	assert.Contains(t, r.Prompt, "surgeries")
	assert.Equal(t, 6, r.Progress.Answered)

	r = submitAll(t, e, "appendectomy (2001), tonsils")
	assert.Contains(t, r.Prompt, "allergies")

	r = e.Submit("Nuts")
	assert.Equal(t, "What reaction do you have to Nuts?", r.Prompt)

	r = e.Submit("hives")
	assert.Contains(t, r.Prompt, "medications")

	r = e.Submit("yes")
	assert.Equal(t, ModeStructuredListCollect, r.Mode)
	assert.Equal(t, "Name:", r.Prompt)

	r = submitAll(t, e, "Metformin", "500mg", "twice daily")
	assert.Equal(t, "Purpose:", r.Prompt)

	r = e.Submit("diabetes")
	assert.Equal(t, "Any more items? (yes/no)", r.Prompt)

	r = e.Submit("no")
	assert.Contains(t, r.Prompt, "supplements")

	r = submitAll(t, e, "none", "all")
	assert.Contains(t, r.Prompt, "wearable")

	r = e.Submit("Fitbit")
	require.True(t, r.Done)
	assert.Equal(t, ModeFinished, r.Mode)
	assert.Empty(t, r.Prompt)

	out := decode(t, r.Document)
	meta := out["meta"].(map[string]any)
	completed, err := time.Parse(time.RFC3339, meta["completed_at"].(string))
	require.NoError(t, err)
	assert.True(t, completed.Equal(fixedNow))
	progress := meta["progress"].(map[string]any)
	assert.Equal(t, progress["total_questions"], progress["answered"])
	assert.Equal(t, float64(12), progress["answered"])

	profile := out["basic_profile"].(map[string]any)
	assert.Equal(t, float64(42), profile["age"])
	assert.Equal(t, float64(176), profile["weight_pounds"])
	assert.Equal(t, `5'10"`, profile["height"])
	assert.Equal(t, float64(70), profile["height_inches_total"])
	assert.Equal(t, "Female", profile["sex_assigned_at_birth"])
	assert.Equal(t, []any{
		map[string]any{"label": "East Asian", "other_note": nil},
		map[string]any{"label": "Other", "other_note": "Basque"},
	}, profile["ancestries"])

	history := out["medical_history"].(map[string]any)
	assert.Equal(t, []any{
		map[string]any{"label": "Cancer", "other_note": nil, "start_year": float64(2010)},
		map[string]any{"label": "Other", "other_note": "Lupus", "start_year": nil},
	}, history["conditions"])
	assert.Equal(t, []any{"appendectomy (2001)", "tonsils"}, history["surgeries_or_hospital_stays"])
	assert.Equal(t, []any{
		map[string]any{"label": "Nuts", "other_note": nil, "reaction": "hives"},
	}, history["allergies"])

	meds := out["medications_and_supplements"].(map[string]any)
	assert.Equal(t, []any{
		map[string]any{"name": "Metformin", "dose_strength": "500mg", "frequency": "twice daily", "purpose": "diabetes"},
	}, meds["medications"])
	assert.Equal(t, []any{}, meds["supplements"])

	misc := out["miscellaneous"].(map[string]any)
	assert.Len(t, misc["cam_fields"], 5)
	assert.Equal(t, []any{"Fitbit"}, misc["wearable_devices"])
}

func TestEngineFinishedIsIdempotent(t *testing.T) {
	e := newTestEngine()
	first := submitAll(t, e, "yes", "30", "stop")
	require.True(t, first.Done)

	before := e.Document()
	for _, in := range []string{"42", "done", ""} {
		again := e.Submit(in)
		assert.True(t, again.Done)
		assert.Equal(t, string(first.Document), string(again.Document))
	}
	assert.Equal(t, before, e.Document())

	result, ok := e.Result()
	require.True(t, ok)
	assert.Equal(t, string(first.Document), string(result))
}

func TestEngineTerminationTokens(t *testing.T) {
	for _, tok := range []string{"done", "FINISH", " Stop "} {
		t.Run(tok, func(t *testing.T) {
			e := newTestEngine()
			r := submitAll(t, e, "hi", "51", tok)
			require.True(t, r.Done)
			assert.Equal(t, 1, r.Progress.Answered)
			out := decode(t, r.Document)
			assert.Equal(t, float64(51), out["basic_profile"].(map[string]any)["age"])
		})
	}

	t.Run("during follow-ups", func(t *testing.T) {
		e := newTestEngine()
		r := submitAll(t, e, "hi", "40", "150", "170cm", "male", "South Asian", "Stroke, Gout", "2012")
		require.Equal(t, ModeSubQuestionDrain, r.Mode)

		r = e.Submit("done")
		require.True(t, r.Done)
		assert.Equal(t, 5, r.Progress.Answered)
		assert.Empty(t, e.Pending())

		doc := e.Document()
		require.Len(t, doc.MedicalHistory.Conditions, 2)
		assert.Equal(t, 2012, *doc.MedicalHistory.Conditions[0].StartYear)
		assert.Nil(t, doc.MedicalHistory.Conditions[1].StartYear)
	})

	_, ok := newTestEngine().Result()
	assert.False(t, ok)
}

func TestEngineSentinelAnswers(t *testing.T) {
	e := newTestEngine()
	submitAll(t, e, "hi", "skip", "not sure", "none", "skip")
	doc := e.Document()
	assert.Nil(t, doc.BasicProfile.Age)
	assert.Nil(t, doc.BasicProfile.WeightPounds)
	assert.Nil(t, doc.BasicProfile.Height)
	assert.Nil(t, doc.BasicProfile.HeightInchesTotal)
	assert.Nil(t, doc.BasicProfile.SexAssignedAtBirth)
	assert.Equal(t, 4, e.Progress().Answered)
}

func TestEngineNoneConditionsSkipFollowUps(t *testing.T) {
	e := newTestEngine()
	r := submitAll(t, e, "hi", "40", "150", "170cm", "male", "South Asian", "None")
	assert.Equal(t, ModeMainCatalog, r.Mode)
	assert.Contains(t, r.Prompt, "surgeries")
	doc := e.Document()
	require.Len(t, doc.MedicalHistory.Conditions, 1)
	assert.Equal(t, "None", doc.MedicalHistory.Conditions[0].Label)
	assert.Equal(t, "170 cm", *doc.BasicProfile.Height)
	assert.Nil(t, doc.BasicProfile.HeightInchesTotal)
}

func TestEngineUnknownStartYear(t *testing.T) {
	e := newTestEngine()
	submitAll(t, e, "hi", "40", "150", "170cm", "male", "South Asian", "Stroke, Gout")
	r := e.Submit("unknown")
	assert.Equal(t, "What is the start year (YYYY) for Gout? If unknown, say 'unknown'.", r.Prompt)
	r = e.Submit("around 2015")
	assert.Contains(t, r.Prompt, "surgeries")

	doc := e.Document()
	assert.Nil(t, doc.MedicalHistory.Conditions[0].StartYear)
	assert.Nil(t, doc.MedicalHistory.Conditions[1].StartYear)
}

func TestEngineOtherAllergenFollowUp(t *testing.T) {
	e := newTestEngine()
	submitAll(t, e, "hi", "40", "150", "170cm", "male", "South Asian", "None", "none")
	r := e.Submit("Egg, other allergens")
	assert.Equal(t, "What reaction do you have to Egg?", r.Prompt)
	r = e.Submit("rash")
	assert.Equal(t, "Please specify the other allergen(s).", r.Prompt)
	r = e.Submit("penicillin")
	assert.Contains(t, r.Prompt, "medications")

	allergies := e.Document().MedicalHistory.Allergies
	require.Len(t, allergies, 2)
	assert.Equal(t, "rash", *allergies[0].Reaction)
	assert.Equal(t, "Other Allergens", allergies[1].Label)
	assert.Equal(t, "penicillin", *allergies[1].OtherNote)
	assert.Nil(t, allergies[1].Reaction)
}

func TestEngineMedicationsNoneSkipsCollection(t *testing.T) {
	e := newTestEngine()
	submitAll(t, e, "hi", "40", "150", "170cm", "male", "South Asian", "None", "none", "none")
	r := e.Submit("none")
	assert.Equal(t, ModeMainCatalog, r.Mode)
	assert.Contains(t, r.Prompt, "supplements")
	assert.Equal(t, []model.StructuredItem{}, e.Document().MedicationsAndSupplements.Medications)
	assert.Equal(t, 9, r.Progress.Answered)
}

func TestEngineStructuredListMoreItems(t *testing.T) {
	e := newTestEngine()
	submitAll(t, e, "hi", "40", "150", "170cm", "male", "South Asian", "None", "none", "none")
	submitAll(t, e, "yes", "Lisinopril", "10mg", "daily", "blood pressure")

	r := e.Submit("YES")
	assert.Equal(t, "Okay, let's add another item.\nName:", r.Prompt)

	// field answers are stored verbatim, sentinels included
	r = submitAll(t, e, "Aspirin", "skip", "as needed", "none")
	assert.Equal(t, "Any more items? (yes/no)", r.Prompt)
	r = e.Submit("nope")
	assert.Contains(t, r.Prompt, "supplements")

	meds := e.Document().MedicationsAndSupplements.Medications
	require.Len(t, meds, 2)
	assert.Equal(t, "Lisinopril", meds[0].Name)
	assert.Equal(t, "skip", meds[1].DoseStrength)
	assert.Equal(t, "none", meds[1].Purpose)
	assert.NotEqual(t, meds[0].ID, meds[1].ID)
}

func TestEngineTerminationKeepsCollectedItems(t *testing.T) {
	e := newTestEngine()
	submitAll(t, e, "hi", "40", "150", "170cm", "male", "South Asian", "None", "none", "none")
	submitAll(t, e, "yes", "Lisinopril", "10mg", "daily", "blood pressure", "yes", "Asp")

	r := e.Submit("done")
	require.True(t, r.Done)
	meds := e.Document().MedicationsAndSupplements.Medications
	require.Len(t, meds, 1)
	assert.Equal(t, "Lisinopril", meds[0].Name)
	assert.Empty(t, e.Pending())
}

func TestEngineDropsBrokenFollowUps(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	e := newTestEngine(WithLogger(logger.New(zap.New(core))))
	submitAll(t, e, "hi", "40", "150", "170cm", "male", "South Asian")

	r := e.Submit("Stroke")
	require.Equal(t, ModeSubQuestionDrain, r.Mode)

	e.pending = append([]PendingSubQuestion{{QuestionID: "conditions", ItemID: "it_x", Index: 7}}, e.pending...)
	r = e.Submit("2001")
	// the answer lands on the broken head, which is logged and dropped
	assert.Equal(t, ModeSubQuestionDrain, r.Mode)
	assert.Equal(t, "What is the start year (YYYY) for Stroke? If unknown, say 'unknown'.", r.Prompt)

	r = e.Submit("2001")
	assert.Contains(t, r.Prompt, "surgeries")
	assert.Equal(t, 2001, *e.Document().MedicalHistory.Conditions[0].StartYear)

	errs := logs.FilterLevelExact(zap.ErrorLevel).All()
	require.Len(t, errs, 1)
	assert.Equal(t, "sub-question lookup failed", errs[0].Message)
}

func TestEngineListWithoutFieldsAdvances(t *testing.T) {
	catalog := []model.Question{
		{ID: "intro", Text: "hello", Step: model.StepIntro, Type: model.QuestionTypeText},
		{ID: "meds", Text: "meds?", Step: model.StepMedicationsAndSupplements, Type: model.QuestionTypeListStructured, Field: model.FieldMedications},
		{ID: "age", Text: "age?", Step: model.StepBasicProfile, Type: model.QuestionTypeNumber, Field: model.FieldAge},
	}
	e := NewEngine(catalog)
	r := submitAll(t, e, "hi", "yes")
	assert.Equal(t, "age?", r.Prompt)
	assert.Equal(t, 1, r.Progress.Answered)

	r = e.Submit("33")
	assert.True(t, r.Done)
	assert.Equal(t, 2, r.Progress.Answered)
}

func TestCatalogIsConsistent(t *testing.T) {
	seen := map[string]bool{}
	for _, q := range DefaultCatalog() {
		assert.False(t, seen[q.ID], "duplicate id %s", q.ID)
		seen[q.ID] = true
		if q.Counted() {
			assert.NotEqual(t, model.FieldNone, q.Field, q.ID)
		}
		if q.Type == model.QuestionTypeListStructured {
			assert.Len(t, q.SubQuestions, 4, q.ID)
		}
	}
	assert.Equal(t, 12, CountedQuestions(DefaultCatalog()))
}
