package collect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTerms(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "terms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTerms(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"json list", `["Buffalo Trace", "Weller", "Eagle Rare"]`, []string{"Buffalo Trace", "Weller", "Eagle Rare"}},
		{"yaml list", "- Weller\n- Buffalo Trace\n", []string{"Weller", "Buffalo Trace"}},
		{"mapping", "terms:\n  - Eagle Rare\n  - Weller\n", []string{"Eagle Rare", "Weller"}},
		{"blanks and repeats", `["  Weller ", "", "Weller", "   "]`, []string{"Weller"}},
		{"empty file", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadTerms(writeTerms(t, tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadTerms_Errors(t *testing.T) {
	_, err := LoadTerms(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collect: read terms")

	_, err = LoadTerms(writeTerms(t, "just a string"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collect: parse terms")
}
