package model

import (
	"errors"
	"fmt"
	"time"
)

// AssistantVersion is stamped into every document
const AssistantVersion = "v1"

var (
	ErrFieldMismatch = errors.New("field does not accept this value kind")
	ErrItemNotFound  = errors.New("list item not found")
)

// Progress counts answered catalog questions (the intro is not counted)
type Progress struct {
	TotalQuestions int `json:"total_questions" bson:"total_questions"`
	Answered       int `json:"answered" bson:"answered"`
}

type Meta struct {
	AssistantVersion string     `json:"assistant_version" bson:"assistant_version"`
	CompletedAt      *time.Time `json:"completed_at" bson:"completed_at"`
	Progress         Progress   `json:"progress" bson:"progress"`
}

// Selection is one picked label of a multi-select answer. ID is assigned
// when the item is created and is stable for the life of the session.
type Selection struct {
	ID        string  `json:"-" bson:"id"`
	Label     string  `json:"label" bson:"label"`
	OtherNote *string `json:"other_note" bson:"other_note"`
}

func (s Selection) ItemID() string { return s.ID }

type Condition struct {
	Selection `bson:",inline"`
	StartYear *int `json:"start_year" bson:"start_year"`
}

type Allergy struct {
	Selection `bson:",inline"`
	Reaction  *string `json:"reaction" bson:"reaction"`
}

// StructuredItem is one medication or supplement entry
type StructuredItem struct {
	ID           string `json:"-" bson:"id"`
	Name         string `json:"name" bson:"name"`
	DoseStrength string `json:"dose_strength" bson:"dose_strength"`
	Frequency    string `json:"frequency" bson:"frequency"`
	Purpose      string `json:"purpose" bson:"purpose"`
}

func (s StructuredItem) ItemID() string { return s.ID }

// Set writes one field of the entry.
func (s *StructuredItem) Set(f ItemField, value string) error {
	switch f {
	case ItemName:
		s.Name = value
	case ItemDoseStrength:
		s.DoseStrength = value
	case ItemFrequency:
		s.Frequency = value
	case ItemPurpose:
		s.Purpose = value
	default:
		return fmt.Errorf("structured item %s: %w", f, ErrFieldMismatch)
	}
	return nil
}

type BasicProfile struct {
	Age                *int        `json:"age" bson:"age"`
	WeightPounds       *int        `json:"weight_pounds" bson:"weight_pounds"`
	Height             *string     `json:"height" bson:"height"`
	HeightInchesTotal  *int        `json:"height_inches_total" bson:"height_inches_total"`
	SexAssignedAtBirth *string     `json:"sex_assigned_at_birth" bson:"sex_assigned_at_birth"`
	Ancestries         []Selection `json:"ancestries" bson:"ancestries"`
}

type MedicalHistory struct {
	Conditions               []Condition `json:"conditions" bson:"conditions"`
	SurgeriesOrHospitalStays []string    `json:"surgeries_or_hospital_stays" bson:"surgeries_or_hospital_stays"`
	Allergies                []Allergy   `json:"allergies" bson:"allergies"`
}

type MedicationsAndSupplements struct {
	Medications []StructuredItem `json:"medications" bson:"medications"`
	Supplements []StructuredItem `json:"supplements" bson:"supplements"`
}

type Miscellaneous struct {
	CamFields       []string `json:"cam_fields" bson:"cam_fields"`
	WearableDevices []string `json:"wearable_devices" bson:"wearable_devices"`
}

// Document is the survey result. Unanswered scalars are nil and
// unanswered lists are empty.
type Document struct {
	Meta                      Meta                      `json:"meta" bson:"meta"`
	BasicProfile              BasicProfile              `json:"basic_profile" bson:"basic_profile"`
	MedicalHistory            MedicalHistory            `json:"medical_history" bson:"medical_history"`
	MedicationsAndSupplements MedicationsAndSupplements `json:"medications_and_supplements" bson:"medications_and_supplements"`
	Miscellaneous             Miscellaneous             `json:"miscellaneous" bson:"miscellaneous"`
}

// NewDocument returns an empty document for a catalog of total counted questions.
func NewDocument(total int) *Document {
	return &Document{
		Meta: Meta{
			AssistantVersion: AssistantVersion,
			Progress:         Progress{TotalQuestions: total},
		},
		BasicProfile: BasicProfile{
			Ancestries: []Selection{},
		},
		MedicalHistory: MedicalHistory{
			Conditions:               []Condition{},
			SurgeriesOrHospitalStays: []string{},
			Allergies:                []Allergy{},
		},
		MedicationsAndSupplements: MedicationsAndSupplements{
			Medications: []StructuredItem{},
			Supplements: []StructuredItem{},
		},
		Miscellaneous: Miscellaneous{
			CamFields:       []string{},
			WearableDevices: []string{},
		},
	}
}

func (d *Document) SetInt(f Field, v *int) error {
	switch f {
	case FieldAge:
		d.BasicProfile.Age = v
	case FieldWeightPounds:
		d.BasicProfile.WeightPounds = v
	case FieldHeightInchesTotal:
		d.BasicProfile.HeightInchesTotal = v
	default:
		return fmt.Errorf("set int %q: %w", f, ErrFieldMismatch)
	}
	return nil
}

func (d *Document) SetText(f Field, v *string) error {
	switch f {
	case FieldHeight:
		d.BasicProfile.Height = v
	case FieldSexAssignedAtBirth:
		d.BasicProfile.SexAssignedAtBirth = v
	default:
		return fmt.Errorf("set text %q: %w", f, ErrFieldMismatch)
	}
	return nil
}

func (d *Document) SetStrings(f Field, v []string) error {
	if v == nil {
		v = []string{}
	}
	switch f {
	case FieldSurgeries:
		d.MedicalHistory.SurgeriesOrHospitalStays = v
	case FieldCamFields:
		d.Miscellaneous.CamFields = v
	case FieldWearableDevices:
		d.Miscellaneous.WearableDevices = v
	default:
		return fmt.Errorf("set strings %q: %w", f, ErrFieldMismatch)
	}
	return nil
}

// SetSelections replaces a multi-select list. Conditions and allergies
// get their extra fields reset to nil.
func (d *Document) SetSelections(f Field, items []Selection) error {
	switch f {
	case FieldAncestries:
		d.BasicProfile.Ancestries = append([]Selection{}, items...)
	case FieldConditions:
		list := make([]Condition, len(items))
		for i, s := range items {
			list[i] = Condition{Selection: s}
		}
		d.MedicalHistory.Conditions = list
	case FieldAllergies:
		list := make([]Allergy, len(items))
		for i, s := range items {
			list[i] = Allergy{Selection: s}
		}
		d.MedicalHistory.Allergies = list
	default:
		return fmt.Errorf("set selections %q: %w", f, ErrFieldMismatch)
	}
	return nil
}

// Selection looks up a multi-select item by id.
func (d *Document) Selection(f Field, id string) (Selection, error) {
	var i int
	switch f {
	case FieldAncestries:
		if i = indexOf(d.BasicProfile.Ancestries, id); i >= 0 {
			return d.BasicProfile.Ancestries[i], nil
		}
	case FieldConditions:
		if i = indexOf(d.MedicalHistory.Conditions, id); i >= 0 {
			return d.MedicalHistory.Conditions[i].Selection, nil
		}
	case FieldAllergies:
		if i = indexOf(d.MedicalHistory.Allergies, id); i >= 0 {
			return d.MedicalHistory.Allergies[i].Selection, nil
		}
	default:
		return Selection{}, fmt.Errorf("selection %q: %w", f, ErrFieldMismatch)
	}
	return Selection{}, fmt.Errorf("selection %s in %q: %w", id, f, ErrItemNotFound)
}

// SetItemText writes a text follow-up answer onto the item with id.
func (d *Document) SetItemText(f Field, id string, key ItemField, v *string) error {
	sel, err := d.selectionRef(f, id)
	if err != nil {
		return err
	}
	switch {
	case key == ItemOtherNote:
		sel.OtherNote = v
	case key == ItemReaction && f == FieldAllergies:
		d.MedicalHistory.Allergies[indexOf(d.MedicalHistory.Allergies, id)].Reaction = v
	default:
		return fmt.Errorf("set %s on %q: %w", key, f, ErrFieldMismatch)
	}
	return nil
}

// SetItemInt writes a numeric follow-up answer onto the item with id.
func (d *Document) SetItemInt(f Field, id string, key ItemField, v *int) error {
	if f != FieldConditions || key != ItemStartYear {
		return fmt.Errorf("set %s on %q: %w", key, f, ErrFieldMismatch)
	}
	i := indexOf(d.MedicalHistory.Conditions, id)
	if i < 0 {
		return fmt.Errorf("condition %s: %w", id, ErrItemNotFound)
	}
	d.MedicalHistory.Conditions[i].StartYear = v
	return nil
}

func (d *Document) SetStructured(f Field, items []StructuredItem) error {
	list := append([]StructuredItem{}, items...)
	switch f {
	case FieldMedications:
		d.MedicationsAndSupplements.Medications = list
	case FieldSupplements:
		d.MedicationsAndSupplements.Supplements = list
	default:
		return fmt.Errorf("set structured %q: %w", f, ErrFieldMismatch)
	}
	return nil
}

func (d *Document) selectionRef(f Field, id string) (*Selection, error) {
	var i int
	switch f {
	case FieldAncestries:
		if i = indexOf(d.BasicProfile.Ancestries, id); i >= 0 {
			return &d.BasicProfile.Ancestries[i], nil
		}
	case FieldConditions:
		if i = indexOf(d.MedicalHistory.Conditions, id); i >= 0 {
			return &d.MedicalHistory.Conditions[i].Selection, nil
		}
	case FieldAllergies:
		if i = indexOf(d.MedicalHistory.Allergies, id); i >= 0 {
			return &d.MedicalHistory.Allergies[i].Selection, nil
		}
	default:
		return nil, fmt.Errorf("selection %q: %w", f, ErrFieldMismatch)
	}
	return nil, fmt.Errorf("selection %s in %q: %w", id, f, ErrItemNotFound)
}

func indexOf[T interface{ ItemID() string }](items []T, id string) int {
	for i, item := range items {
		if item.ItemID() == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	c := *d
	if d.Meta.CompletedAt != nil {
		t := *d.Meta.CompletedAt
		c.Meta.CompletedAt = &t
	}
	c.BasicProfile.Age = cloneInt(d.BasicProfile.Age)
	c.BasicProfile.WeightPounds = cloneInt(d.BasicProfile.WeightPounds)
	c.BasicProfile.Height = cloneString(d.BasicProfile.Height)
	c.BasicProfile.HeightInchesTotal = cloneInt(d.BasicProfile.HeightInchesTotal)
	c.BasicProfile.SexAssignedAtBirth = cloneString(d.BasicProfile.SexAssignedAtBirth)

	c.BasicProfile.Ancestries = make([]Selection, len(d.BasicProfile.Ancestries))
	for i, s := range d.BasicProfile.Ancestries {
		c.BasicProfile.Ancestries[i] = s.clone()
	}
	c.MedicalHistory.Conditions = make([]Condition, len(d.MedicalHistory.Conditions))
	for i, cond := range d.MedicalHistory.Conditions {
		c.MedicalHistory.Conditions[i] = Condition{Selection: cond.Selection.clone(), StartYear: cloneInt(cond.StartYear)}
	}
	c.MedicalHistory.Allergies = make([]Allergy, len(d.MedicalHistory.Allergies))
	for i, a := range d.MedicalHistory.Allergies {
		c.MedicalHistory.Allergies[i] = Allergy{Selection: a.Selection.clone(), Reaction: cloneString(a.Reaction)}
	}
	c.MedicalHistory.SurgeriesOrHospitalStays = append([]string{}, d.MedicalHistory.SurgeriesOrHospitalStays...)
	c.MedicationsAndSupplements.Medications = append([]StructuredItem{}, d.MedicationsAndSupplements.Medications...)
	c.MedicationsAndSupplements.Supplements = append([]StructuredItem{}, d.MedicationsAndSupplements.Supplements...)
	c.Miscellaneous.CamFields = append([]string{}, d.Miscellaneous.CamFields...)
	c.Miscellaneous.WearableDevices = append([]string{}, d.Miscellaneous.WearableDevices...)
	return &c
}

func (s Selection) clone() Selection {
	s.OtherNote = cloneString(s.OtherNote)
	return s
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
