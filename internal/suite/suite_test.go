package suite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect(t *testing.T) {
	all := []Suite{
		{Spec: "auth/signup"},
		{Spec: "auth/signin"},
		{Spec: "auth/signout"},
		{Spec: "smoke/home"},
	}

	tests := []struct {
		name     string
		patterns []string
		want     []string
		wantErr  string
	}{
		{name: "no patterns selects all", patterns: nil, want: []string{"auth/signup", "auth/signin", "auth/signout", "smoke/home"}},
		{name: "blank patterns ignored", patterns: []string{" ", ""}, want: []string{"auth/signup", "auth/signin", "auth/signout", "smoke/home"}},
		{name: "auth subset", patterns: []string{"auth/*"}, want: []string{"auth/signup", "auth/signin", "auth/signout"}},
		{name: "single spec", patterns: []string{"auth/signin"}, want: []string{"auth/signin"}},
		{name: "keeps registration order", patterns: []string{"auth/signout", "auth/signup"}, want: []string{"auth/signup", "auth/signout"}},
		{name: "overlapping patterns do not duplicate", patterns: []string{"auth/*", "auth/sign?n"}, want: []string{"auth/signup", "auth/signin", "auth/signout"}},
		{name: "unmatched pattern", patterns: []string{"auth/*", "billing/*"}, wantErr: `"billing/*" matched no suites`},
		{name: "malformed pattern", patterns: []string{"auth/["}, wantErr: "invalid spec pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(all, tt.patterns)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, Specs(got))
		})
	}
}

func TestScenario_Name(t *testing.T) {
	sc := Scenario{ID: "SI-003", Title: "should show an error for non-existent user"}
	assert.Equal(t, "should show an error for non-existent user (SI-003)", sc.Name())
}

func TestReport_Counts(t *testing.T) {
	r := &Report{Results: []Result{
		{Status: StatusPassed},
		{Status: StatusPassed},
		{Status: StatusFailed},
		{Status: StatusSkipped},
	}}
	assert.Equal(t, 2, r.Passed())
	assert.Equal(t, 1, r.Failed())
	assert.Equal(t, 1, r.Skipped())
	assert.False(t, r.OK())

	ok := &Report{Results: []Result{{Status: StatusPassed}}}
	assert.True(t, ok.OK())
	assert.Zero(t, ok.Duration())
}
