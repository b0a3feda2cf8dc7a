package application

import (
	"regexp"
	"strings"
	"time"

	"github.com/ericfisherdev/fundintake/internal/domain/model"
)

// DateLayout is the wire format of date fields.
const DateLayout = "2006-01-02"

// adultAge separates MINOR from MAJOR nominees.
const adultAge = 18

var (
	phonePattern = regexp.MustCompile(`^[0-9+\-\s()]{10,15}$`)
	panPattern   = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	ifscPattern  = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
)

// requiredFieldOrder fixes the order of "is required." errors.
var requiredFieldOrder = []string{
	model.FieldName, model.FieldMobile, model.FieldEmail, model.FieldPAN, model.FieldDateOfBirth,
	"f20", "f11", "f12", model.FieldMaritalStatus, "f16",
	"f21_addressLine1", "f21_city", "f21_state", "f21_postalCode",
	"f17", "f18", "f19",
	model.FieldNomineeName, "f22", model.FieldNomineeType, model.FieldNomineePAN,
	model.FieldNomineeDOB, model.FieldNomineeAddress,
	"f41", "f42",
}

// conditionalGroup is a set of fields that only apply when trigger holds want.
type conditionalGroup struct {
	trigger string
	want    string
	fields  []string
	message func(f model.Field) string
}

var conditionalGroups = []conditionalGroup{
	{
		trigger: model.FieldMaritalStatus, want: model.MaritalStatusMarried,
		fields:  []string{model.FieldSpouseName},
		message: func(model.Field) string { return "Spouse Name is required when married." },
	},
	{
		trigger: model.FieldNomineeType, want: model.NomineeTypeMinor,
		fields:  []string{model.FieldGuardianName},
		message: func(model.Field) string { return "Guardian Name is required for minor nominee." },
	},
	{
		trigger: model.FieldNomineeAddress, want: model.NomineeAddressDiffers,
		fields: []string{
			model.FieldNomineeAddrLine1, model.FieldNomineeCity,
			model.FieldNomineeState, model.FieldNomineePostal,
		},
		message: func(f model.Field) string { return f.Label + " is required when the nominee address is different." },
	},
	{
		trigger: model.FieldForeignTaxResid, want: model.ForeignTaxResidencyYes,
		fields:  []string{model.FieldTaxCountry, model.FieldTaxPayerID},
		message: func(f model.Field) string { return f.Label + " is required for tax residents of another country." },
	},
}

// Validator checks and sanitizes form submissions. It holds no state besides
// the clock used for age checks.
type Validator struct {
	now func() time.Time
}

// NewValidator creates a Validator. A nil now uses time.Now.
func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now}
}

// Validate runs every rule without stopping at the first failure and returns
// the ordered errors along with the sanitized fields.
func (v *Validator) Validate(fields model.Submission) model.ValidationResult {
	clean := sanitizeSubmission(fields)

	var errs []string

	for _, id := range requiredFieldOrder {
		if clean[id] == "" {
			f, _ := model.FieldByID(id)
			errs = append(errs, f.RequiredLabel()+" is required.")
		}
	}

	for _, g := range conditionalGroups {
		if clean[g.trigger] != g.want {
			for _, id := range g.fields {
				delete(clean, id)
			}
			continue
		}
		for _, id := range g.fields {
			if clean[id] == "" {
				f, _ := model.FieldByID(id)
				errs = append(errs, g.message(f))
			}
		}
	}

	for _, f := range model.FormSchema {
		value, ok := clean[f.ID]
		if !ok {
			continue
		}
		if msg := checkFormat(f, value); msg != "" {
			errs = append(errs, msg)
		}
	}

	if msg := v.checkNomineeAge(clean); msg != "" {
		errs = append(errs, msg)
	}

	return model.ValidationResult{Errors: errs, Fields: clean}
}

// sanitizeSubmission drops meta and empty fields and normalizes the rest.
func sanitizeSubmission(fields model.Submission) model.Submission {
	clean := make(model.Submission, len(fields))
	for id, raw := range fields {
		if model.MetaFields[id] {
			continue
		}

		value := SanitizeText(raw)
		if f, ok := model.FieldByID(id); ok {
			switch f.Kind {
			case model.FieldKindEmail:
				value = SanitizeEmail(raw)
			case model.FieldKindPAN, model.FieldKindIFSC:
				value = strings.ToUpper(value)
			}
		}

		if value != "" {
			clean[id] = value
		}
	}
	return clean
}

func checkFormat(f model.Field, value string) string {
	switch f.Kind {
	case model.FieldKindEmail:
		if !IsValidEmail(value) {
			return "Please enter a valid email address."
		}
	case model.FieldKindPhone:
		if !phonePattern.MatchString(value) {
			return "Please enter a valid phone number."
		}
	case model.FieldKindPAN:
		if !panPattern.MatchString(value) {
			label := "PAN number"
			if f.ID == model.FieldNomineePAN {
				label = "Nominee PAN number"
			}
			return "Please enter a valid " + label + " (format: ABCDE1234F)."
		}
	case model.FieldKindIFSC:
		if !ifscPattern.MatchString(value) {
			return "Please enter a valid IFSC code (format: ABCD0123456)."
		}
	case model.FieldKindEnum:
		if !f.HasOption(value) {
			return "Please select a valid " + f.Label + "."
		}
	case model.FieldKindDate:
		if _, err := time.Parse(DateLayout, value); err != nil {
			return "Please enter a valid " + f.Label + "."
		}
	}
	return ""
}

// checkNomineeAge rejects a nominee type that contradicts the nominee's age.
func (v *Validator) checkNomineeAge(clean model.Submission) string {
	dob, err := time.Parse(DateLayout, clean[model.FieldNomineeDOB])
	if err != nil {
		return ""
	}

	age := ageOn(dob, v.now())
	switch clean[model.FieldNomineeType] {
	case model.NomineeTypeMinor:
		if age >= adultAge {
			return "Nominee Type MINOR requires a nominee younger than 18."
		}
	case model.NomineeTypeMajor:
		if age < adultAge {
			return "Nominee Type MAJOR requires a nominee aged 18 or older."
		}
	}
	return ""
}

// ageOn returns the age in completed years on day now.
func ageOn(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}
