package phone

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestPhone_MarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		phone Phone
		want  string
	}{
		{"null", Null(), `"Null"`},
		{"vowel", Vowel(), `{"Vowel":{}}`},
		{
			"plosive",
			Plosive(PlosiveBilabial, false, Aspirated, Ejective),
			`{"Plosive":{"place":"Bilabial","voiced":false,"attachments":["Ejective","Aspirated"]}}`,
		},
		{
			"affricative",
			Affricative(PlosiveAlveolar, FricativePostalveolar, true),
			`{"Affricative":{"start_place":"Alveolar","end_place":"Postalveolar","voiced":true,"attachments":[]}}`,
		},
		{
			"fricative",
			Fricative(FricativeDental, false, Creaky),
			`{"Fricative":{"place":"Dental","voiced":false,"attachments":["Creaky"]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.phone)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var back Phone
			require.NoError(t, json.Unmarshal(data, &back))
			assert.True(t, tt.phone.Equal(back), "round trip changed %v into %v", tt.phone, back)
		})
	}
}

func TestPhone_UnmarshalJSON_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown unit", `"Click"`},
		{"unknown variant", `{"Click":{}}`},
		{"two variants", `{"Vowel":{},"Null":{}}`},
		{"bad place", `{"Plosive":{"place":"Uvular","voiced":false,"attachments":[]}}`},
		{"bad attachment", `{"Plosive":{"place":"Bilabial","voiced":false,"attachments":["Nasal"]}}`},
		{"not an object", `42`},
		{"plosive without place", `{"Plosive":{"voiced":true}}`},
		{"affricative without end place", `{"Affricative":{"start_place":"Alveolar","voiced":false,"attachments":[]}}`},
		{"fricative without place", `{"Fricative":{"voiced":false}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Phone
			assert.Error(t, json.Unmarshal([]byte(tt.input), &p))
		})
	}
}

func TestAttachments_DuplicatesCollapse(t *testing.T) {
	var p Phone
	input := `{"Plosive":{"place":"Dental","voiced":true,"attachments":["Breathy","Breathy","creaky"]}}`
	require.NoError(t, json.Unmarshal([]byte(input), &p))
	assert.Equal(t, 2, p.Attachments.Len())
	assert.True(t, p.Attachments.Has(Breathy))
	assert.True(t, p.Attachments.Has(Creaky))
}

func TestPhone_YAML(t *testing.T) {
	original := Affricative(PlosiveBilabial, FricativeAlveolar, false, Ejective)

	data, err := yaml.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Affricative:")
	assert.Contains(t, string(data), "start_place: Bilabial")

	var back Phone
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.True(t, original.Equal(back))

	data, err = yaml.Marshal(Null())
	require.NoError(t, err)
	assert.Equal(t, "Null\n", string(data))
}

func TestAttachments_Set(t *testing.T) {
	set := NewAttachments(Creaky, Ejective, Creaky)
	assert.Equal(t, []Attachment{Ejective, Creaky}, set.Slice())
	assert.Equal(t, 2, set.Len())

	set = set.Without(Creaky)
	assert.False(t, set.Has(Creaky))
	assert.True(t, set.Has(Ejective))

	assert.Equal(t, set, set.With(attachmentCount), "out of range attachments are ignored")
}
