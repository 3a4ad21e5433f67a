package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMode(t *testing.T) {
	tests := []struct {
		input string
		want  OutputMode
	}{
		{"text", ModeText},
		{"markdown", ModeMarkdown},
		{"md", ModeMarkdown},
		{"json", ModeJSON},
		{"auto", ModeAuto},
		{"", ModeAuto},
		{"bogus", ModeAuto},
		{" JSON ", ModeJSON},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Mode(tt.input))
		})
	}
}

func TestEffectiveModeAuto(t *testing.T) {
	var buf bytes.Buffer

	tty := NewRendererWithTTY(&buf, &buf, true, ModeAuto)
	assert.Equal(t, ModeText, tty.EffectiveMode())

	pipe := NewRendererWithTTY(&buf, &buf, false, ModeAuto)
	assert.Equal(t, ModeMarkdown, pipe.EffectiveMode())

	explicit := NewRendererWithTTY(&buf, &buf, true, ModeJSON)
	assert.Equal(t, ModeJSON, explicit.EffectiveMode())
}

func TestHeaderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithTTY(&buf, &buf, false, ModeMarkdown)

	r.Header(2, "Columns")
	assert.Equal(t, "## Columns\n", buf.String())
}

func TestNonTTYOutputHasNoANSI(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRendererWithTTY(&out, &errOut, false, ModeMarkdown)

	r.Success("generated")
	r.Error("failed")
	r.Muted("details")

	combined := out.String() + errOut.String()
	assert.NotContains(t, combined, "\x1b[")
	assert.Contains(t, out.String(), "✓ generated")
	assert.Contains(t, errOut.String(), "✗ failed")
}

func TestStatusLine(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithTTY(&buf, &buf, false, ModeText)

	r.StatusLine("schema.yaml", "success", "")
	r.StatusLine("load", "failed", "connection refused")

	assert.Contains(t, buf.String(), "✓ schema.yaml")
	assert.Contains(t, buf.String(), "✗ load (connection refused)")
}

func TestTableMarkdown(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithTTY(&buf, &buf, false, ModeMarkdown)

	r.Table([]string{"column", "mean"}, [][]string{{"price", "412000"}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, lines[0], "column")
	assert.Contains(t, lines[2], "price")
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "|"), "markdown table row should start with |: %q", line)
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithTTY(&buf, &buf, false, ModeJSON)

	assert.NoError(t, r.JSON(map[string]int{"rows": 3}))
	assert.JSONEq(t, `{"rows": 3}`, buf.String())
}
