package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xalts/authsuite/internal/suite"
)

func TestChooseSpec(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "by number", input: "2\n", want: "auth/signin"},
		{name: "by name", input: "auth/signup\n", want: "auth/signup"},
		{name: "reprompts after invalid answers", input: "\n9\nbilling\n1\n", want: "auth/signup"},
		{name: "input ends", input: "nope\n", wantErr: ErrNoChoice},
		{name: "empty input", input: "", wantErr: ErrNoChoice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			got, err := ChooseSpec(strings.NewReader(tt.input), &out, testSuites())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "1) auth/signup")
			assert.Contains(t, out.String(), "2) auth/signin")
		})
	}
}

func TestChooseSpec_NoSuites(t *testing.T) {
	_, err := ChooseSpec(strings.NewReader("1\n"), &bytes.Buffer{}, []suite.Suite{})
	assert.Error(t, err)
}

func TestListSuites(t *testing.T) {
	var out bytes.Buffer

	ListSuites(&out, testSuites())

	text := out.String()
	assert.Contains(t, text, "auth/signup (Sign Up)")
	assert.Contains(t, text, "  SU-002  fails")
	assert.Contains(t, text, "auth/signin (Sign In)")
	assert.Contains(t, text, "2 specs, 3 scenarios")
}
