package web

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httphandler "github.com/ericfisherdev/fundintake/internal/adapter/driving/http"
	"github.com/ericfisherdev/fundintake/internal/domain/model"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, c.Render(context.Background(), &b))
	return b.String()
}

func settingDef(t *testing.T, key string) model.SettingDefinition {
	t.Helper()
	def, ok := model.SettingDefinitionFor(key)
	require.True(t, ok, key)
	return def
}

func TestFieldGroups_NomineeAddressSharesOneWrapper(t *testing.T) {
	groups := fieldGroups(model.SectionNominee)
	require.NotEmpty(t, groups)
	assert.Empty(t, groups[0].id)

	var address *fieldGroup
	for i := range groups {
		if groups[i].id == "nominee-address-fields" {
			require.Nil(t, address, "address fields split across wrappers")
			address = &groups[i]
		}
	}
	require.NotNil(t, address)

	ids := make([]string, 0, len(address.fields))
	for _, f := range address.fields {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{
		model.FieldNomineeAddrLine1,
		model.FieldNomineeCity,
		model.FieldNomineeState,
		model.FieldNomineePostal,
	}, ids)
}

func TestFieldGroups_CoversEveryField(t *testing.T) {
	for _, section := range model.Sections {
		n := 0
		for _, g := range fieldGroups(section) {
			n += len(g.fields)
		}
		assert.Len(t, model.FieldsInSection(section), n, section)
	}
}

func TestDisplaySetting(t *testing.T) {
	password := settingDef(t, model.KeySMTPPassword)
	port := settingDef(t, model.KeySMTPPort)

	assert.Equal(t, httphandler.PasswordMask, displaySetting(password, "hunter2"))
	assert.Empty(t, displaySetting(password, ""))
	assert.Equal(t, "587", displaySetting(port, "587"))
}

func TestSettingField_PasswordIsMasked(t *testing.T) {
	out := render(t, settingField(settingDef(t, model.KeySMTPPassword), "hunter2", ""))

	assert.Contains(t, out, `type="password" id="smtp_password" name="smtp_password" value="`+httphandler.PasswordMask+`" autocomplete="new-password">`)
	assert.NotContains(t, out, "hunter2")
}

func TestSettingField_PortBoundsAndError(t *testing.T) {
	out := render(t, settingField(settingDef(t, model.KeySMTPPort), "70000", "Port must be between 1 and 65535"))

	assert.Contains(t, out, `type="number" id="smtp_port" name="smtp_port" value="70000" min="1" max="65535">`)
	assert.Contains(t, out, `<p class="field-error">Port must be between 1 and 65535</p>`)
	assert.Contains(t, out, `<p class="help">Common ports: 587 (TLS), 465 (SSL), 25 (No encryption)</p>`)
}

func TestSettingField_Checkbox(t *testing.T) {
	def := settingDef(t, model.KeySMTPSkipVerify)

	on := render(t, settingField(def, "1", ""))
	assert.Contains(t, on, `<input type="hidden" name="smtp_skip_verify" value="0"> <label><input type="checkbox" name="smtp_skip_verify" value="1" checked> Skip Certificate Verification</label>`)

	off := render(t, settingField(def, "0", ""))
	assert.NotContains(t, off, "checked")
}
