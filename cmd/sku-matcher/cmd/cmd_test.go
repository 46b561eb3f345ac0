package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/refurb-sku-matcher/internal/store"
)

const catalogFixture = `# bench catalog
FOLD3-512-BLK,phones
FOLD3-512-BLK-ACCEPTABLE,phones
FOLD3-512-BLK-ATT,phones

IP12-128-WHT
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestImportCatalog(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore()
	n, err := importCatalog(context.Background(), s, strings.NewReader(catalogFixture))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	count, err := s.CountSkus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	e, err := s.GetSku(context.Background(), "FOLD3-512-BLK-ATT")
	require.NoError(t, err)
	assert.Equal(t, "phones", e.SourceTab)
}

func TestMatchCommand_OfflineCatalog(t *testing.T) {
	t.Parallel()

	catalog := writeFile(t, "skus.txt", catalogFixture)

	tests := []struct {
		name    string
		args    []string
		stdin   string
		want    []string
		wantErr string
	}{
		{
			name: "flags",
			args: []string{"--catalog", catalog, "--brand", "Samsung", "--model", "Galaxy Z Fold3", "--capacity", "512GB", "--color", "Phantom Black"},
			want: []string{`"sku_code": "FOLD3-512-BLK"`, `"match_method": "exact"`},
		},
		{
			name:  "records from stdin",
			args:  []string{"--catalog", catalog, "--record", "-"},
			stdin: `[{"Model":"Galaxy Z Fold3","storage":"512GB","colour":"Phantom Black","network":"AT&T"},{"model":"Galaxy S21","carrier":"T-Mobile"}]`,
			want:  []string{`"sku_code": "FOLD3-512-BLK-ATT"`, `"result": null`},
		},
		{
			name:    "model required",
			args:    []string{"--catalog", catalog, "--brand", "Samsung"},
			wantErr: "either --model or --record is required",
		},
		{
			name:    "missing catalog file",
			args:    []string{"--catalog", filepath.Join(t.TempDir(), "nope.txt"), "--model", "iPhone 12"},
			wantErr: "opening catalog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			cmd := matchCmd()
			cmd.SetArgs(tt.args)
			cmd.SetIn(strings.NewReader(tt.stdin))
			cmd.SetOut(&out)
			cmd.SetErr(&bytes.Buffer{})

			err := cmd.Execute()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	cmd := versionCommand()
	assert.Equal(t, "version", cmd.Use)
}
