package presenter

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func newBufferPresenter() (*TerminalPresenter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewWithOptions(&out, &errOut, ColorNever), &out, &errOut
}

func TestError(t *testing.T) {
	p, out, errOut := newBufferPresenter()

	p.Error(errors.New("boom"), "Failed to load")
	assert.Contains(t, errOut.String(), "[ERROR] Failed to load: boom")
	assert.Empty(t, out.String())

	errOut.Reset()
	p.Error(errors.New("boom"), "")
	assert.Contains(t, errOut.String(), "[ERROR] boom")

	errOut.Reset()
	p.Error(nil, "ignored")
	assert.Empty(t, errOut.String())
}

func TestMessages(t *testing.T) {
	p, out, _ := newBufferPresenter()

	p.Success("saved")
	p.Warning("careful")
	p.Info("detail")
	p.Section("Results")
	p.Separator()

	text := out.String()
	assert.Contains(t, text, "[OK] saved")
	assert.Contains(t, text, "[WARN] careful")
	assert.Contains(t, text, "detail")
	assert.Contains(t, text, "Results")
	assert.Contains(t, text, "-------")
}

func TestQuietMode(t *testing.T) {
	p, out, errOut := newBufferPresenter()
	p.SetQuiet(true)
	assert.True(t, p.IsQuiet())

	p.Success("saved")
	p.Warning("careful")
	p.Info("detail")
	p.Section("Results")
	p.Separator()
	assert.Empty(t, out.String())

	// Errors always surface.
	p.Error(errors.New("boom"), "")
	assert.Contains(t, errOut.String(), "boom")
}
