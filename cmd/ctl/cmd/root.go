package cmd

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpfielding/pngchunk.go/pkg/config"
	"github.com/jpfielding/pngchunk.go/pkg/logging"
	"github.com/jpfielding/pngchunk.go/pkg/pngchunk"
)

// settings is the merged result of the config file and persistent flags
type settings struct {
	cfg     config.Config
	logFile io.Closer
}

// close releases the rotated log file, if one was opened
func (s *settings) close() error {
	if s.logFile == nil {
		return nil
	}
	err := s.logFile.Close()
	s.logFile = nil
	return err
}

func (s *settings) decoderOptions() []pngchunk.Option {
	return append(s.cfg.DecoderOptions(), pngchunk.WithLogger(slog.Default()))
}

func NewRoot(ctx context.Context, gitsha string) *cobra.Command {
	return newRoot(ctx, gitsha, &settings{})
}

func newRoot(ctx context.Context, gitsha string, st *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pngctl",
		Short:         "a CLI to inspect and rewrite PNG chunk streams",
		Long:          "Lists, verifies and rewrites the chunks of PNG files without touching pixel data.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.load(ctx, cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return st.close()
		},
		Run: func(cmd *cobra.Command, args []string) {
			printCommandTree(cmd, 0)
		},
	}
	cmd.AddCommand(
		NewVersionCmd(ctx, gitsha),
		NewChunksCmd(ctx, st),
		NewVerifyCmd(ctx, st),
		NewInspectCmd(ctx, st),
		NewTextCmd(ctx, st),
		NewStripCmd(ctx, st),
	)
	pf := cmd.PersistentFlags()
	pf.String("config", config.DefaultPath(), "YAML config file")
	pf.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	pf.String("log-format", "text", "Log format (text|json)")
	pf.String("log-file", "", "Write logs to a rotated file instead of stderr")
	pf.Int("max-chunk-size", pngchunk.DefaultMaxChunkSize, "Largest chunk body accepted")
	pf.String("text-encoding", "utf8", "tEXt decoding (utf8|latin1)")
	return cmd
}

// load reads the config file, lets explicitly set flags win, and installs the logger
func (s *settings) load(ctx context.Context, cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") || cfg.LogFormat == "" {
		cfg.LogFormat, _ = flags.GetString("log-format")
	}
	if flags.Changed("log-file") {
		cfg.LogFile, _ = flags.GetString("log-file")
	}
	if flags.Changed("max-chunk-size") || cfg.MaxChunkSize == 0 {
		cfg.MaxChunkSize, _ = flags.GetInt("max-chunk-size")
	}
	if flags.Changed("text-encoding") || cfg.TextEncoding == "" {
		cfg.TextEncoding, _ = flags.GetString("text-encoding")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfg = cfg

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	if err := s.close(); err != nil {
		return err
	}
	var w io.Writer = cmd.ErrOrStderr()
	if cfg.LogFile != "" {
		f := logging.FileWriter(cfg.LogFile, 10, 3)
		s.logFile, w = f, f
	}
	slog.SetDefault(logging.Logger(w, strings.EqualFold(cfg.LogFormat, "json"), level))
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		slog.WarnContext(ctx, "Invalid log level, defaulting to INFO", "level", cfg.LogLevel, "error", err)
	}
	return nil
}

func printCommandTree(cmd *cobra.Command, indent int) {
	fmt.Fprintln(cmd.OutOrStdout(), strings.Repeat("\t", indent), cmd.Use+":", cmd.Short)
	for _, subCmd := range cmd.Commands() {
		printCommandTree(subCmd, indent+1)
	}
}

func NewVersionCmd(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "git sha for this build",
		Long:  "git sha for this build",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), gitsha)
		},
	}
	return cmd
}

// inputURI returns the --uri flag or the first positional argument
func inputURI(cmd *cobra.Command, args []string) (string, error) {
	uri, _ := cmd.Flags().GetString("uri")
	if uri == "" && len(args) > 0 {
		uri = args[0]
	}
	if uri == "" {
		return "", fmt.Errorf("input is required. Use --uri or provide it as an argument")
	}
	return uri, nil
}

// openInput opens a local path, "-" for stdin, or an http(s) URL
func openInput(ctx context.Context, cmd *cobra.Command, uri string) (io.ReadCloser, error) {
	uri = strings.TrimPrefix(uri, "file://")
	switch {
	case uri == "-":
		return io.NopCloser(cmd.InOrStdin()), nil
	case strings.HasPrefix(uri, "http"):
		insecure, _ := cmd.Flags().GetBool("insecure")
		cl := &http.Client{
			Transport: &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: insecure}},
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		resp, err := cl.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to download: %w", err)
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			reqDump, _ := httputil.DumpRequest(req, true)
			cmd.ErrOrStderr().Write(reqDump)
			resDump, _ := httputil.DumpResponse(resp, false)
			cmd.ErrOrStderr().Write(resDump)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("failed to download: %s", resp.Status)
		}
		return resp.Body, nil
	default:
		f, err := os.Open(uri)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		return f, nil
	}
}

// inputFlags registers the flags understood by openInput
func inputFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringP("uri", "u", "", "PNG path, - for stdin, or http(s) URL")
	pf.Bool("insecure", false, "skip TLS verification for https inputs")
	pf.BoolP("verbose", "v", false, "dump http request and response headers")
}
