package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs rootCmd with args after resetting flag state left by
// earlier runs.
func execute(t *testing.T, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()
	viewCmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestVersionCmd(t *testing.T) {
	SetVersion("1.2.3")
	defer SetVersion("dev")

	out, _, err := execute(t, nil, "version")
	require.NoError(t, err)
	assert.Equal(t, "csvgrid version 1.2.3\n", out)
}

func TestViewCmd_Flags(t *testing.T) {
	for name, short := range map[string]string{"url": "u", "proxy": "p", "file": "f", "format": "o", "limit": "n"} {
		flag := viewCmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, short, flag.Shorthand, name)
	}
	assert.Equal(t, "table", viewCmd.Flags().Lookup("format").DefValue)
	assert.NotNil(t, viewCmd.Flags().Lookup("max-bytes"))
}

func TestViewCmd_Stdin(t *testing.T) {
	in := strings.NewReader("id,name\n1,Ada\n\n2,Grace\n")
	out, _, err := execute(t, in, "view", "--file", "-", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"name":"Ada"},{"id":2,"name":"Grace"}]`, out)
}

func TestViewCmd_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,name\n1,Ada\n2,Grace\n"), 0o600))

	out, _, err := execute(t, nil, "view", "-f", path, "-o", "csv", "-n", "1")
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,Ada\n", out)
}

func TestViewCmd_URL(t *testing.T) {
	var gotRange string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRange = r.Header.Get("Range")
		fmt.Fprint(w, "city,pop\nOslo,709037\nBergen,291940\n")
	}))
	defer srv.Close()

	out, _, err := execute(t, nil, "view", "--url", srv.URL+"/cities.csv", "--max-bytes", "1024")
	require.NoError(t, err)
	assert.Equal(t, "bytes=0-1023", gotRange)
	assert.Contains(t, out, "city")
	assert.Contains(t, out, "Oslo")
	assert.Contains(t, out, "291940")
}

func TestViewCmd_TruncationWarning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "a\n"+strings.Repeat("1\n", 50))
	}))
	defer srv.Close()

	_, errOut, err := execute(t, nil, "view", "--url", srv.URL, "--max-bytes", "10")
	require.NoError(t, err)
	assert.Contains(t, errOut, "only the first 10 bytes")
}

func TestViewCmd_Errors(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr string
		wantMsg string
	}{
		{
			name:    "no source",
			args:    []string{"view"},
			wantErr: "one of --url or --file is required",
		},
		{
			name:    "unknown format",
			args:    []string{"view", "--file", "-", "--format", "xml"},
			wantErr: `unknown format "xml"`,
		},
		{
			name:    "url and file together",
			args:    []string{"view", "--file", "-", "--url", "https://example.com/a.csv"},
			wantErr: "none of the others can be",
		},
		{
			name:    "unterminated quote",
			stdin:   "a,b\n\"open,1\n",
			args:    []string{"view", "--file", "-"},
			wantErr: "unterminated quoted field",
			wantMsg: "CSV001",
		},
		{
			name:    "invalid url",
			args:    []string{"view", "--url", "data.csv"},
			wantErr: "invalid url",
			wantMsg: "NET001",
		},
		{
			name:    "extra args",
			args:    []string{"view", "data.csv"},
			wantErr: "unknown command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errOut, err := execute(t, strings.NewReader(tt.stdin), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			if tt.wantMsg != "" {
				assert.Contains(t, errOut, tt.wantMsg)
			}
		})
	}
}
