package progress

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
	assert.False(t, ConfigFor(&bytes.Buffer{}).Enabled)
}

func TestSpinner_Disabled(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&Config{Enabled: false, Writer: &buf})

	require.NoError(t, s.Start("working"))
	assert.Nil(t, s.printer)
	s.Stop()
	assert.Empty(t, buf.String())
}

func TestSpinner_Lifecycle(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&Config{Enabled: true, Writer: &buf})

	require.NoError(t, s.Start("deploying"))
	assert.NotNil(t, s.printer)
	assert.Error(t, s.Start("again"))

	s.Stop()
	assert.Nil(t, s.printer)
}

func TestRun(t *testing.T) {
	called := false
	err := Run(&Config{Enabled: false}, "working", func() error {
		called = true
		return errors.New("failed")
	})
	assert.True(t, called)
	assert.EqualError(t, err, "failed")
}
