package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocumentShape(t *testing.T) {
	raw, err := json.Marshal(NewDocument(12))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))

	meta := got["meta"].(map[string]any)
	assert.Equal(t, "v1", meta["assistant_version"])
	assert.Nil(t, meta["completed_at"])
	assert.Equal(t, map[string]any{"total_questions": float64(12), "answered": float64(0)}, meta["progress"])

	profile := got["basic_profile"].(map[string]any)
	assert.Nil(t, profile["age"])
	assert.Nil(t, profile["height_inches_total"])
	assert.Equal(t, []any{}, profile["ancestries"])

	history := got["medical_history"].(map[string]any)
	assert.Equal(t, []any{}, history["surgeries_or_hospital_stays"])
	assert.Equal(t, []any{}, history["allergies"])

	misc := got["miscellaneous"].(map[string]any)
	assert.Equal(t, []any{}, misc["cam_fields"])
}

func TestFieldKindsAreChecked(t *testing.T) {
	d := NewDocument(1)
	age := 30
	assert.NoError(t, d.SetInt(FieldAge, &age))
	assert.ErrorIs(t, d.SetInt(FieldHeight, &age), ErrFieldMismatch)
	assert.ErrorIs(t, d.SetText(FieldAge, nil), ErrFieldMismatch)
	assert.ErrorIs(t, d.SetStrings(FieldConditions, nil), ErrFieldMismatch)
	assert.ErrorIs(t, d.SetSelections(FieldCamFields, nil), ErrFieldMismatch)
	assert.ErrorIs(t, d.SetStructured(FieldAllergies, nil), ErrFieldMismatch)

	assert.NoError(t, d.SetStrings(FieldSurgeries, nil))
	assert.Equal(t, []string{}, d.MedicalHistory.SurgeriesOrHospitalStays)
}

func TestItemUpdatesUseStableIDs(t *testing.T) {
	d := NewDocument(1)
	require.NoError(t, d.SetSelections(FieldConditions, []Selection{
		{ID: "a", Label: "Cancer"},
		{ID: "b", Label: "Stroke"},
	}))

	year := 2010
	require.NoError(t, d.SetItemInt(FieldConditions, "b", ItemStartYear, &year))
	assert.Nil(t, d.MedicalHistory.Conditions[0].StartYear)
	assert.Equal(t, 2010, *d.MedicalHistory.Conditions[1].StartYear)

	note := "left side"
	require.NoError(t, d.SetItemText(FieldConditions, "a", ItemOtherNote, &note))
	sel, err := d.Selection(FieldConditions, "a")
	require.NoError(t, err)
	assert.Equal(t, "left side", *sel.OtherNote)

	assert.ErrorIs(t, d.SetItemInt(FieldConditions, "zzz", ItemStartYear, &year), ErrItemNotFound)
	assert.ErrorIs(t, d.SetItemText(FieldConditions, "a", ItemReaction, &note), ErrFieldMismatch)

	require.NoError(t, d.SetSelections(FieldAllergies, []Selection{{ID: "x", Label: "Nuts"}}))
	hives := "hives"
	require.NoError(t, d.SetItemText(FieldAllergies, "x", ItemReaction, &hives))
	assert.Equal(t, "hives", *d.MedicalHistory.Allergies[0].Reaction)

	raw, err := json.Marshal(d.MedicalHistory.Allergies[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"Nuts","other_note":null,"reaction":"hives"}`, string(raw))
}

func TestStructuredItemSet(t *testing.T) {
	var item StructuredItem
	require.NoError(t, item.Set(ItemName, "Metformin"))
	require.NoError(t, item.Set(ItemDoseStrength, "500mg"))
	require.NoError(t, item.Set(ItemFrequency, "twice daily"))
	require.NoError(t, item.Set(ItemPurpose, "diabetes"))
	assert.ErrorIs(t, item.Set(ItemReaction, "x"), ErrFieldMismatch)

	raw, err := json.Marshal(item)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Metformin","dose_strength":"500mg","frequency":"twice daily","purpose":"diabetes"}`, string(raw))
}

func TestCloneIsDeep(t *testing.T) {
	d := NewDocument(1)
	note := "Basque"
	require.NoError(t, d.SetSelections(FieldAncestries, []Selection{{ID: "a", Label: "Other", OtherNote: &note}}))
	age := 40
	require.NoError(t, d.SetInt(FieldAge, &age))

	c := d.Clone()
	*c.BasicProfile.Age = 41
	*c.BasicProfile.Ancestries[0].OtherNote = "changed"
	c.Miscellaneous.CamFields = append(c.Miscellaneous.CamFields, "Ayurveda")

	assert.Equal(t, 40, *d.BasicProfile.Age)
	assert.Equal(t, "Basque", *d.BasicProfile.Ancestries[0].OtherNote)
	assert.Empty(t, d.Miscellaneous.CamFields)
}

func TestQuestionSubQuestionScopes(t *testing.T) {
	q := Question{
		OtherLabel: "Other",
		NoneLabel:  "None",
		SubQuestions: []SubQuestion{
			{ID: "start_year", Scope: ScopeSelected},
			{ID: "other_note", Scope: ScopeOther},
		},
	}
	note := "x"
	assert.Equal(t, 0, q.NextSubQuestion(Selection{Label: "Cancer"}, 0))
	assert.Equal(t, -1, q.NextSubQuestion(Selection{Label: "Cancer"}, 1))
	assert.Equal(t, 1, q.NextSubQuestion(Selection{Label: "Other"}, 0))
	assert.Equal(t, -1, q.NextSubQuestion(Selection{Label: "Other", OtherNote: &note}, 0))
	assert.Equal(t, -1, q.NextSubQuestion(Selection{Label: "None"}, 0))
	assert.False(t, (&Question{Step: StepIntro}).Counted())
}
