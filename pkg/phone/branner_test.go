package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBranner_Plosive(t *testing.T) {
	tests := []struct {
		name  string
		phone Phone
		want  string
	}{
		{"voiceless bilabial", Plosive(PlosiveBilabial, false), "p"},
		{"voiced bilabial", Plosive(PlosiveBilabial, true), "b"},
		{"voiceless labiodental", Plosive(PlosiveLabiodental, false), "p["},
		{"voiced labiodental", Plosive(PlosiveLabiodental, true), "b["},
		{"voiceless dental", Plosive(PlosiveDental, false), "t["},
		{"voiced dental", Plosive(PlosiveDental, true), "d["},
		{"voiceless alveolar", Plosive(PlosiveAlveolar, false), "t"},
		{"voiced alveolar", Plosive(PlosiveAlveolar, true), "d"},
		{"ejective", Plosive(PlosiveBilabial, false, Ejective), "p`"},
		{"ejective ignores voicing", Plosive(PlosiveAlveolar, true, Ejective), "t`"},
		{"preaspirated voiced", Plosive(PlosiveBilabial, true, Preaspirated), "h^b"},
		{"aspirated", Plosive(PlosiveAlveolar, false, Aspirated), "th^"},
		{"preaspiration wins", Plosive(PlosiveAlveolar, false, Aspirated, Preaspirated), "h^t"},
		{"breathy", Plosive(PlosiveBilabial, true, Breathy), `bh")`},
		{"creaky", Plosive(PlosiveDental, true, Creaky), "d[~"},
		{"breathy before creaky", Plosive(PlosiveBilabial, true, Creaky, Breathy), `bh")~`},
		{"all marks in order", Plosive(PlosiveBilabial, false, Breathy, Creaky, Ejective, Aspirated), "ph\")~`h^"},
		{"wrap covers ejective", Plosive(PlosiveAlveolar, false, Ejective, Preaspirated), "h^t`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.phone.Branner()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBranner_Affricative(t *testing.T) {
	tests := []struct {
		name  string
		phone Phone
		want  string
	}{
		{"ejective marked once", Affricative(PlosiveBilabial, FricativeAlveolar, false, Ejective), "p))s`"},
		{"plain voiceless", Affricative(PlosiveAlveolar, FricativePostalveolar, false), "t))S"},
		{"plain voiced", Affricative(PlosiveAlveolar, FricativePostalveolar, true), `d))3"`},
		{"bilabial fricative end", Affricative(PlosiveBilabial, FricativeBilabial, true), `b))B"`},
		{"dental", Affricative(PlosiveDental, FricativeDental, false), "t[))O-"},
		{"voiced dental", Affricative(PlosiveDental, FricativeDental, true), "d[))d-"},
		{"labiodental", Affricative(PlosiveLabiodental, FricativeLabiodental, true), "b[))v"},
		{"breathy on both halves", Affricative(PlosiveAlveolar, FricativeAlveolar, true, Breathy), `dh")))zh")`},
		{"creaky on both halves", Affricative(PlosiveAlveolar, FricativeAlveolar, true, Creaky), "d~))z~"},
		{"aspiration wraps whole", Affricative(PlosiveAlveolar, FricativeAlveolar, false, Aspirated), "t))sh^"},
		{"preaspiration wraps whole", Affricative(PlosiveAlveolar, FricativeAlveolar, false, Preaspirated), "h^t))s"},
		{
			"full composition",
			Affricative(PlosiveAlveolar, FricativeAlveolar, true, Breathy, Creaky, Ejective, Preaspirated),
			"h^th\")~))sh\")~`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.phone.Branner()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBranner_Null(t *testing.T) {
	assert.True(t, Null().IsNull())
	assert.True(t, Phone{Voiced: true}.IsNull(), "features do not matter for the null production")
	assert.False(t, Vowel().IsNull())

	got, err := Phone{Voiced: true}.Branner()
	require.NoError(t, err)
	assert.Equal(t, "∅", got)
}

func TestBranner_Unsupported(t *testing.T) {
	for _, p := range []Phone{Fricative(FricativeAlveolar, false), Vowel()} {
		t.Run(p.Kind.String(), func(t *testing.T) {
			got, err := p.Branner()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnsupported)
			assert.Empty(t, got)
			assert.Panics(t, func() { p.MustBranner() })
		})
	}
}

func TestBranner_UnknownPlace(t *testing.T) {
	_, err := Phone{Kind: KindPlosive, Place: "Uvular"}.Branner()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupported)

	_, err = Phone{Kind: KindAffricative, Place: PlosiveAlveolar, Release: "Uvular"}.Branner()
	require.Error(t, err)
}

func TestPhone_String(t *testing.T) {
	assert.Equal(t, "p`", Plosive(PlosiveBilabial, false, Ejective).String())
	assert.Equal(t, "<vowel>", Vowel().String())
	assert.Equal(t, "<fricative/alveolar/voiced>", Fricative(FricativeAlveolar, true).String())
}
