package main

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withStdin(t *testing.T, input string) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString(input)
	require.NoError(t, err)
	w.Close()

	orig := os.Stdin
	os.Stdin = r
	t.Cleanup(func() {
		os.Stdin = orig
		io.Copy(io.Discard, r)
	})
}

func TestConfirm_YesFlagSkipsPrompt(t *testing.T) {
	assert.True(t, confirm(true, "apply?"))
}

func TestConfirm_AcceptsYAndYes(t *testing.T) {
	withStdin(t, "y\n")
	assert.True(t, confirm(false, "apply?"))

	withStdin(t, "yes\n")
	assert.True(t, confirm(false, "apply?"))
}

func TestConfirm_RejectsEverythingElse(t *testing.T) {
	withStdin(t, "n\n")
	assert.False(t, confirm(false, "apply?"))
}
