package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvgrid/internal/config"
	"github.com/JonMunkholm/csvgrid/internal/core"
	"github.com/JonMunkholm/csvgrid/internal/fetch"
	"github.com/JonMunkholm/csvgrid/internal/render"
)

var (
	viewURL      string
	viewProxy    string
	viewFile     string
	viewFormat   string
	viewLimit    int
	viewMaxBytes int64
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Print a CSV file as a grid",
	Long: `Loads a CSV file from --url (through --proxy when given) or from --file,
where "-" reads standard input, and prints the parsed rows.

Defaults for the proxy prefix, byte window and user agent come from the same
environment variables the server reads (FETCH_PROXY_PREFIX, FETCH_MAX_BYTES,
FETCH_USER_AGENT).`,
	Example: `  csvgrid view --url https://example.com/data.csv
  csvgrid view --url https://example.com/data.csv --proxy "https://proxy.example/?url="
  cat data.csv | csvgrid view --file - --format json`,
	Args: cobra.NoArgs,
	RunE: runView,
}

func init() {
	viewCmd.Flags().StringVarP(&viewURL, "url", "u", "", "URL of the CSV file")
	viewCmd.Flags().StringVarP(&viewProxy, "proxy", "p", "", "proxy prefix prepended to the URL")
	viewCmd.Flags().StringVarP(&viewFile, "file", "f", "", `read CSV from a file ("-" for stdin)`)
	viewCmd.Flags().StringVarP(&viewFormat, "format", "o", "table", "output format ("+strings.Join(render.Names(), ", ")+")")
	viewCmd.Flags().IntVarP(&viewLimit, "limit", "n", 0, "maximum number of rows to print (0 for all)")
	viewCmd.Flags().Int64Var(&viewMaxBytes, "max-bytes", 0, "byte window requested from the server")
	viewCmd.MarkFlagsMutuallyExclusive("url", "file")
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, _ []string) error {
	formatter, err := render.ByName(viewFormat)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	src, err := viewSource(cmd, cfg)
	if err != nil {
		return err
	}

	maxBytes := cfg.Fetch.MaxBytes
	if viewMaxBytes > 0 {
		maxBytes = viewMaxBytes
	}
	service := core.NewService(fetch.New(fetch.Options{
		MaxBytes:  maxBytes,
		Timeout:   cfg.Fetch.Timeout,
		UserAgent: cfg.Fetch.UserAgent,
	}), core.Options{})

	table, err := service.Load(cmd.Context(), src)
	if err != nil {
		if msg := core.FormatUserError(err); msg != "" {
			cmd.PrintErrln(msg)
		}
		return err
	}

	if table.Truncated {
		cmd.PrintErrf("warning: only the first %d bytes were downloaded; the last row may be incomplete\n", table.Bytes)
	}
	return formatter.Format(cmd.OutOrStdout(), table.Columns, table.Rows, viewLimit)
}

// viewSource builds the load source from flags.
func viewSource(cmd *cobra.Command, cfg *config.Config) (core.Source, error) {
	switch {
	case viewFile != "":
		text, err := readInput(cmd, viewFile)
		if err != nil {
			return core.Source{}, err
		}
		return core.Source{RawCSV: text}, nil
	case viewURL != "":
		proxy := cfg.Fetch.ProxyPrefix
		if cmd.Flags().Changed("proxy") {
			proxy = viewProxy
		}
		return core.Source{URL: viewURL, ProxyPrefix: proxy}, nil
	default:
		return core.Source{}, errors.New("one of --url or --file is required")
	}
}

func readInput(cmd *cobra.Command, name string) (string, error) {
	var r io.Reader
	if name == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(name)
		if err != nil {
			return "", fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}
