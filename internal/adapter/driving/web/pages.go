package web

import (
	"strconv"
	"time"

	httphandler "github.com/ericfisherdev/fundintake/internal/adapter/driving/http"
	"github.com/ericfisherdev/fundintake/internal/domain/model"
)

const listTimeLayout = "2006-01-02 15:04 MST"

// conditionalGroups maps a field to the wrapper that app.js shows or hides.
var conditionalGroups = map[string]string{
	model.FieldSpouseName:       "spouse-field",
	model.FieldGuardianName:     "guardian-field",
	model.FieldNomineeAddrLine1: "nominee-address-fields",
	model.FieldNomineeCity:      "nominee-address-fields",
	model.FieldNomineeState:     "nominee-address-fields",
	model.FieldNomineePostal:    "nominee-address-fields",
	model.FieldTaxCountry:       "tax-residency-fields",
	model.FieldTaxPayerID:       "tax-residency-fields",
}

// radioFields render as radio groups instead of selects.
var radioFields = map[string]bool{
	model.FieldNomineeAddress:  true,
	model.FieldForeignTaxResid: true,
}

var settingSections = []struct{ key, title string }{
	{"smtp", "SMTP Settings"},
	{"email", "Email Settings"},
	{"general", "General Settings"},
}

// fieldGroup is a run of consecutive fields sharing one conditional wrapper.
// Unconditional runs have an empty id.
type fieldGroup struct {
	id     string
	fields []model.Field
}

func fieldGroups(section string) []fieldGroup {
	var groups []fieldGroup
	for _, f := range model.FieldsInSection(section) {
		id := conditionalGroups[f.ID]
		if n := len(groups); n > 0 && groups[n-1].id == id {
			groups[n-1].fields = append(groups[n-1].fields, f)
			continue
		}
		groups = append(groups, fieldGroup{id: id, fields: []model.Field{f}})
	}
	return groups
}

func optionID(f model.Field, i int) string {
	return f.ID + "_" + strconv.Itoa(i)
}

func inputType(kind model.FieldKind) string {
	switch kind {
	case model.FieldKindDate:
		return "date"
	case model.FieldKindEmail:
		return "email"
	case model.FieldKindPhone:
		return "tel"
	default:
		return "text"
	}
}

type settingsPageData struct {
	CSRF     string
	Settings model.Settings
	Errors   []model.FieldError
	Warnings []string
	Saved    bool
}

func (d settingsPageData) fieldError(key string) string {
	for _, e := range d.Errors {
		if e.Key == key {
			return e.Message
		}
	}
	return ""
}

func settingsIn(section string) []model.SettingDefinition {
	var defs []model.SettingDefinition
	for _, def := range model.SettingDefinitions {
		if def.Section == section {
			defs = append(defs, def)
		}
	}
	return defs
}

func settingInputType(kind model.SettingKind) string {
	switch kind {
	case model.SettingKindNumber:
		return "number"
	case model.SettingKindEmail:
		return "email"
	case model.SettingKindPassword:
		return "password"
	default:
		return "text"
	}
}

// displaySetting masks a stored password so it never reaches the page.
func displaySetting(def model.SettingDefinition, value string) string {
	if def.Kind == model.SettingKindPassword && value != "" {
		return httphandler.PasswordMask
	}
	return value
}

func receivedAt(rec model.SubmissionRecord) string {
	return rec.SubmittedAt.In(time.UTC).Format(listTimeLayout)
}
