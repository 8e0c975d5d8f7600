package output

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func newBuffered(mode Mode, isTTY bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, isTTY, mode), out, errOut
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeAuto, false},
		{"auto", ModeAuto, false},
		{"TEXT", ModeText, false},
		{" markdown ", ModeMarkdown, false},
		{"json", ModeJSON, false},
		{"yaml", ModeYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		mode  Mode
		isTTY bool
		want  Mode
	}{
		{ModeAuto, true, ModeText},
		{ModeAuto, false, ModeMarkdown},
		{ModeText, false, ModeText},
		{ModeJSON, true, ModeJSON},
		{"", false, ModeMarkdown},
	}
	for _, tt := range tests {
		r, _, _ := newBuffered(tt.mode, tt.isTTY)
		assert.Equal(t, tt.want, r.EffectiveMode(), "mode=%q tty=%v", tt.mode, tt.isTTY)
	}
}

func TestNewRenderer_BufferIsNotTTY(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.False(t, r.IsTTY())
	assert.Equal(t, ModeMarkdown, r.EffectiveMode())
}

func TestHeader(t *testing.T) {
	r, out, _ := newBuffered(ModeMarkdown, false)
	r.Header(2, "Languages")
	assert.Equal(t, "## Languages\n\n", out.String())

	r, out, _ = newBuffered(ModeText, true)
	r.Header(1, "Languages")
	assert.Contains(t, out.String(), "Languages")
	assert.True(t, ansi.MatchString(out.String()), "text on a terminal is styled")
}

func TestPlainModesHaveNoANSI(t *testing.T) {
	for _, mode := range []Mode{ModeMarkdown, ModeText} {
		r, out, errOut := newBuffered(mode, false)
		r.Header(1, "Title")
		r.Success("ok")
		r.Warning("careful")
		r.Error("bad")
		r.StatusLine("Norse", "success", "3 phonemes")
		r.KeyValues([][2]string{{"name", "norse"}})
		assert.False(t, ansi.MatchString(out.String()+errOut.String()), "mode %s", mode)
	}
}

func TestMessagesGoToTheRightStream(t *testing.T) {
	r, out, errOut := newBuffered(ModeMarkdown, false)
	r.Success("saved")
	r.Info("note")
	r.Muted("quiet")
	r.Warning("careful")
	r.Error("bad")

	assert.Equal(t, "saved\nnote\nquiet\n", out.String())
	assert.Equal(t, "warning: careful\nbad\n", errOut.String())
}

func TestStatusLine(t *testing.T) {
	r, out, _ := newBuffered(ModeMarkdown, false)
	r.StatusLine("Norse", "success", "")
	r.StatusLine("Gothic", "error", "missing")
	r.StatusLine("Proto", "", "")
	assert.Equal(t, "✓ Norse\n✗ Gothic missing\n- Proto\n", out.String())
}

func TestTable(t *testing.T) {
	rows := [][]string{{"Norse", "2"}, {"Gothic", "0"}}

	r, out, _ := newBuffered(ModeMarkdown, false)
	r.Table([]string{"Name", "Phonemes"}, rows)
	md := out.String()
	assert.Contains(t, md, "| Name | Phonemes |")
	assert.Contains(t, md, "| Norse | 2 |")

	r, out, _ = newBuffered(ModeText, false)
	r.Table([]string{"Name", "Phonemes"}, rows)
	assert.Contains(t, out.String(), "┌")
	assert.Contains(t, out.String(), "Gothic")
}

func TestKeyValues(t *testing.T) {
	pairs := [][2]string{{"name", "norse"}, {"languages", "2"}}

	r, out, _ := newBuffered(ModeMarkdown, false)
	r.KeyValues(pairs)
	assert.Equal(t, "- **name:** norse\n- **languages:** 2\n\n", out.String())

	r, out, _ = newBuffered(ModeText, false)
	r.KeyValues(pairs)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "name:      norse", lines[0])
	assert.Equal(t, "languages: 2", lines[1])
}

func TestStructured(t *testing.T) {
	payload := map[string]any{"name": "norse", "languages": []string{"A", "B"}}

	r, out, _ := newBuffered(ModeJSON, false)
	ok, err := r.Structured(payload)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"name":"norse","languages":["A","B"]}`, out.String())

	r, out, _ = newBuffered(ModeYAML, false)
	ok, err = r.Structured(payload)
	require.NoError(t, err)
	assert.True(t, ok)
	var back map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &back))
	assert.Equal(t, "norse", back["name"])

	r, out, _ = newBuffered(ModeMarkdown, false)
	ok, err = r.Structured(payload)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, out.String())
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "# Title", FormatHeader(1, "Title"))
	assert.Equal(t, "### Deep", FormatHeader(3, "Deep"))
	assert.Equal(t, "# Zero", FormatHeader(0, "Zero"))
	assert.Equal(t, "- **family:** abc", FormatKeyValue("family", "abc"))
}

func TestRendererContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))

	r := NewRendererWithTTY(&bytes.Buffer{}, &bytes.Buffer{}, false, ModeJSON)
	ctx := WithContext(context.Background(), r)
	assert.Same(t, r, FromContext(ctx))
}
