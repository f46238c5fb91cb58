package model

// Field addresses a value of the result document. Its value is the JSON
// dot path, so the document shape is derivable from the catalog.
type Field string

const (
	FieldNone               Field = ""
	FieldAge                Field = "basic_profile.age"
	FieldWeightPounds       Field = "basic_profile.weight_pounds"
	FieldHeight             Field = "basic_profile.height"
	FieldHeightInchesTotal  Field = "basic_profile.height_inches_total"
	FieldSexAssignedAtBirth Field = "basic_profile.sex_assigned_at_birth"
	FieldAncestries         Field = "basic_profile.ancestries"
	FieldConditions         Field = "medical_history.conditions"
	FieldSurgeries          Field = "medical_history.surgeries_or_hospital_stays"
	FieldAllergies          Field = "medical_history.allergies"
	FieldMedications        Field = "medications_and_supplements.medications"
	FieldSupplements        Field = "medications_and_supplements.supplements"
	FieldCamFields          Field = "miscellaneous.cam_fields"
	FieldWearableDevices    Field = "miscellaneous.wearable_devices"
)

// Path returns the dot path of f inside the JSON document.
func (f Field) Path() string {
	return string(f)
}

// ItemField addresses a value inside a list item.
type ItemField string

const (
	ItemOtherNote    ItemField = "other_note"
	ItemStartYear    ItemField = "start_year"
	ItemReaction     ItemField = "reaction"
	ItemName         ItemField = "name"
	ItemDoseStrength ItemField = "dose_strength"
	ItemFrequency    ItemField = "frequency"
	ItemPurpose      ItemField = "purpose"
)
