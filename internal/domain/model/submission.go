package model

// FieldKind is the typed variant of a form field.
type FieldKind string

const (
	FieldKindText  FieldKind = "text"
	FieldKindDate  FieldKind = "date"
	FieldKindEnum  FieldKind = "enum"
	FieldKindEmail FieldKind = "email"
	FieldKindPhone FieldKind = "phone"
	FieldKindPAN   FieldKind = "pan"
	FieldKindIFSC  FieldKind = "ifsc"
)

// Section names, in the order they appear in the form and in the email.
const (
	SectionPersonal     = "Personal Information"
	SectionAddress      = "Address Information"
	SectionProfessional = "Professional Information"
	SectionNominee      = "Nominee Information"
	SectionBank         = "Bank Information"
	SectionPEP          = "PEP Information"
	SectionFATCA        = "FATCA Information"
)

// Sections lists the fixed section order.
var Sections = []string{
	SectionPersonal,
	SectionAddress,
	SectionProfessional,
	SectionNominee,
	SectionBank,
	SectionPEP,
	SectionFATCA,
}

// Field identifiers used by validation rules.
const (
	FieldName             = "f1"
	FieldEmail            = "f6"
	FieldNomineeName      = "f7"
	FieldMobile           = "f8"
	FieldPAN              = "f9"
	FieldDateOfBirth      = "f10"
	FieldMaritalStatus    = "f14"
	FieldSpouseName       = "f15"
	FieldNomineeType      = "f23"
	FieldGuardianName     = "f24"
	FieldNomineePAN       = "f25"
	FieldNomineeDOB       = "f27"
	FieldNomineeAddress   = "f29"
	FieldIFSC             = "f35"
	FieldForeignTaxResid  = "f45"
	FieldTaxCountry       = "f46"
	FieldTaxPayerID       = "f47"
	FieldNomineeAddrLine1 = "f30_addressLine1"
	FieldNomineeCity      = "f30_city"
	FieldNomineeState     = "f30_state"
	FieldNomineePostal    = "f30_postalCode"
)

// Trigger values for conditional fields.
const (
	MaritalStatusMarried   = "Married"
	NomineeTypeMinor       = "MINOR"
	NomineeTypeMajor       = "MAJOR"
	NomineeAddressDiffers  = "Different"
	ForeignTaxResidencyYes = "YES"
)

// EnumOption is one allowed value of an enum field or select setting.
type EnumOption struct {
	Value string
	Label string
}

// Field describes one known form field.
type Field struct {
	ID          string
	Label       string // used in the form and the email
	ErrorLabel  string // used in "is required." messages; falls back to Label
	Section     string
	Kind        FieldKind
	Required    bool
	Options     []EnumOption
	Placeholder string
}

// RequiredLabel returns the label used in validation messages.
func (f Field) RequiredLabel() string {
	if f.ErrorLabel != "" {
		return f.ErrorLabel
	}
	return f.Label
}

// HasOption reports whether v is one of the enum options.
func (f Field) HasOption(v string) bool {
	for _, o := range f.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}

// Submission is a flat field-identifier to value mapping. Keys outside
// FormSchema are carried as opaque text.
type Submission map[string]string

// MetaFields never reach the sanitized output.
var MetaFields = map[string]bool{
	"nonce":      true,
	"action":     true,
	"csrf_token": true,
}

func opts(values ...string) []EnumOption {
	out := make([]EnumOption, 0, len(values))
	for _, v := range values {
		out = append(out, EnumOption{Value: v, Label: v})
	}
	return out
}

// FormSchema is the closed schema of known fields in display order.
var FormSchema = []Field{
	// Personal
	{ID: FieldName, Label: "Full Name", ErrorLabel: "Name", Section: SectionPersonal, Kind: FieldKindText, Required: true},
	{ID: FieldMobile, Label: "Mobile Number", Section: SectionPersonal, Kind: FieldKindPhone, Required: true},
	{ID: FieldEmail, Label: "Email Address", ErrorLabel: "Email", Section: SectionPersonal, Kind: FieldKindEmail, Required: true},
	{ID: FieldPAN, Label: "PAN Number", Section: SectionPersonal, Kind: FieldKindPAN, Required: true, Placeholder: "ABCDE1234F"},
	{ID: FieldDateOfBirth, Label: "Date of Birth", Section: SectionPersonal, Kind: FieldKindDate, Required: true},
	{ID: "f20", Label: "Place of Birth", Section: SectionPersonal, Kind: FieldKindText, Required: true},
	{ID: "f11", Label: "Father's Name", Section: SectionPersonal, Kind: FieldKindText, Required: true},
	{ID: "f12", Label: "Mother's Name", Section: SectionPersonal, Kind: FieldKindText, Required: true},
	{ID: FieldMaritalStatus, Label: "Marital Status", Section: SectionPersonal, Kind: FieldKindEnum, Required: true,
		Options: []EnumOption{{Value: "Married", Label: "Married"}, {Value: "UnMarried", Label: "Un Married"}, {Value: "Divorced", Label: "Divorced"}}},
	{ID: FieldSpouseName, Label: "Spouse Name", Section: SectionPersonal, Kind: FieldKindText},
	{ID: "f16", Label: "Residential Status", Section: SectionPersonal, Kind: FieldKindEnum, Required: true,
		Options: []EnumOption{{Value: "Resident", Label: "Resident"}, {Value: "NRI", Label: "Non Resident (NRI)"}}},
	{ID: "f17", Label: "Gender", Section: SectionPersonal, Kind: FieldKindEnum, Required: true, Options: opts("MALE", "FEMALE")},

	// Address
	{ID: "f21_addressLine1", Label: "Address Line 1", Section: SectionAddress, Kind: FieldKindText, Required: true},
	{ID: "f21_city", Label: "City", Section: SectionAddress, Kind: FieldKindText, Required: true},
	{ID: "f21_state", Label: "State", Section: SectionAddress, Kind: FieldKindText, Required: true},
	{ID: "f21_postalCode", Label: "Postal Code", Section: SectionAddress, Kind: FieldKindText, Required: true},

	// Professional
	{ID: "f18", Label: "Occupation", Section: SectionProfessional, Kind: FieldKindText, Required: true},
	{ID: "f19", Label: "Gross Annual Income", Section: SectionProfessional, Kind: FieldKindText, Required: true},
	{ID: "f37", Label: "Income Range", Section: SectionProfessional, Kind: FieldKindEnum,
		Options: opts("BELOW 1 LAKH", "1 <= 5 Lacs", "5 <= 10 Lacs", "10 <= 25 Lacs", "25 <= 1 Crore", "Above 1 Crore")},

	// Nominee
	{ID: FieldNomineeName, Label: "Nominee Name", Section: SectionNominee, Kind: FieldKindText, Required: true},
	{ID: "f22", Label: "Relationship with Nominee", Section: SectionNominee, Kind: FieldKindText, Required: true},
	{ID: FieldNomineeType, Label: "Nominee Type", Section: SectionNominee, Kind: FieldKindEnum, Required: true,
		Options: opts(NomineeTypeMinor, NomineeTypeMajor)},
	{ID: FieldGuardianName, Label: "Guardian Name", Section: SectionNominee, Kind: FieldKindText},
	{ID: FieldNomineePAN, Label: "Nominee PAN Number", ErrorLabel: "Nominee PAN No", Section: SectionNominee, Kind: FieldKindPAN, Required: true},
	{ID: FieldNomineeDOB, Label: "Nominee Date of Birth", Section: SectionNominee, Kind: FieldKindDate, Required: true},
	{ID: FieldNomineeAddress, Label: "Nominee Address Preference", ErrorLabel: "Nominee Address", Section: SectionNominee, Kind: FieldKindEnum, Required: true,
		Options: opts("As Above", NomineeAddressDiffers)},
	{ID: FieldNomineeAddrLine1, Label: "Nominee Address Line 1", Section: SectionNominee, Kind: FieldKindText},
	{ID: FieldNomineeCity, Label: "Nominee City", Section: SectionNominee, Kind: FieldKindText},
	{ID: FieldNomineeState, Label: "Nominee State", Section: SectionNominee, Kind: FieldKindText},
	{ID: FieldNomineePostal, Label: "Nominee Postal Code", Section: SectionNominee, Kind: FieldKindText},

	// Bank
	{ID: "f31", Label: "Bank Name", Section: SectionBank, Kind: FieldKindText},
	{ID: "f32", Label: "Account Type", Section: SectionBank, Kind: FieldKindText},
	{ID: "f34", Label: "Account Number", Section: SectionBank, Kind: FieldKindText},
	{ID: FieldIFSC, Label: "IFSC Code", Section: SectionBank, Kind: FieldKindIFSC, Placeholder: "IFSC0001234"},

	// PEP
	{ID: "f41", Label: "PEP Occupation", ErrorLabel: "Occupation (PEP)", Section: SectionPEP, Kind: FieldKindText, Required: true},
	{ID: "f42", Label: "Source of Wealth", Section: SectionPEP, Kind: FieldKindText, Required: true},

	// FATCA
	{ID: "f44", Label: "Country of Birth", Section: SectionFATCA, Kind: FieldKindText},
	{ID: FieldForeignTaxResid, Label: "Tax Residency Other Than India", Section: SectionFATCA, Kind: FieldKindEnum,
		Options: opts(ForeignTaxResidencyYes, "NO")},
	{ID: FieldTaxCountry, Label: "Country of Tax Residency", Section: SectionFATCA, Kind: FieldKindText},
	{ID: FieldTaxPayerID, Label: "Tax Payer Identification Number", Section: SectionFATCA, Kind: FieldKindText},
}

// FieldByID returns the schema entry for id.
func FieldByID(id string) (Field, bool) {
	for _, f := range FormSchema {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// FieldsInSection returns the schema fields of section in display order.
func FieldsInSection(section string) []Field {
	var out []Field
	for _, f := range FormSchema {
		if f.Section == section {
			out = append(out, f)
		}
	}
	return out
}

// ValidationResult holds the ordered error list and the sanitized fields.
// A non-empty Errors slice rejects the whole submission.
type ValidationResult struct {
	Errors []string
	Fields Submission
}

// Valid reports whether no rule failed.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}
