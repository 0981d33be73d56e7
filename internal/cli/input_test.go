package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain line", "alice\n", "alice"},
		{"trims spaces", "  alice  \n", "alice"},
		{"partial line at EOF", "alice", "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			r := bufio.NewReader(strings.NewReader(tt.input))

			got, err := GetSimpleText(r, "Enter username", out)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Enter username")
		})
	}
}

func TestGetSimpleText_EmptyEOF(t *testing.T) {
	out := &bytes.Buffer{}
	r := bufio.NewReader(strings.NewReader(""))

	_, err := GetSimpleText(r, "Enter username", out)
	assert.Error(t, err)
}

func TestGetPassword_UsesStub(t *testing.T) {
	orig := readPassword
	defer func() { readPassword = orig }()
	readPassword = func(fd int) ([]byte, error) {
		return []byte("correct-horse"), nil
	}

	out := &bytes.Buffer{}
	pw, err := GetPassword(out)
	require.NoError(t, err)
	assert.Equal(t, []byte("correct-horse"), pw)
	assert.Contains(t, out.String(), "Enter password")
}
