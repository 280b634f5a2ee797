package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		got, err := Generate(DefaultLength)
		require.NoError(t, err)
		assert.Len(t, got, DefaultLength)
		assert.False(t, seen[got], "generated id collided: %s", got)
		seen[got] = true

		for _, r := range got {
			assert.Contains(t, alphabet, string(r))
		}
	}
}

func TestGenerateWithPrefix(t *testing.T) {
	got, err := GenerateWithPrefix(PrefixPayment, DefaultLength)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "pay_"))
}

func TestParsePrefixedID(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantPrefix string
		wantShort  string
		wantErr    bool
	}{
		{name: "valid guardianship id", input: "grd_xK9mP2vL3nQa", wantPrefix: "grd", wantShort: "xK9mP2vL3nQa"},
		{name: "valid subscription id", input: "sub_abc123", wantPrefix: "sub", wantShort: "abc123"},
		{name: "no underscore", input: "nounderscore", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "leading underscore", input: "_abc", wantErr: true},
		{name: "trailing underscore", input: "pay_", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefix, shortID, err := ParsePrefixedID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrefix, prefix)
			assert.Equal(t, tt.wantShort, shortID)
		})
	}
}

func TestValidatePrefix(t *testing.T) {
	assert.NoError(t, ValidatePrefix("grd_abc", PrefixGuardianship))
	assert.Error(t, ValidatePrefix("sub_abc", PrefixGuardianship))
	assert.Error(t, ValidatePrefix("garbage", PrefixGuardianship))
}
