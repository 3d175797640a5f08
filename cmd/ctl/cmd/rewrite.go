package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpfielding/pngchunk.go/pkg/config"
	"github.com/jpfielding/pngchunk.go/pkg/pngchunk"
	"github.com/jpfielding/pngchunk.go/pkg/pngchunk/tag"
)

// rewrite decodes the input, passes each chunk through edit, and encodes the result to --out.
// Text is decoded as Latin-1 whatever the settings say, so unedited text chunks are written back byte for byte.
func rewrite(ctx context.Context, st *settings, cmd *cobra.Command, args []string, edit func([]pngchunk.Chunk) ([]pngchunk.Chunk, error)) error {
	uri, err := inputURI(cmd, args)
	if err != nil {
		return err
	}
	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		return fmt.Errorf("--out is required")
	}
	in, err := openInput(ctx, cmd, uri)
	if err != nil {
		return err
	}
	defer in.Close()
	chunks, _, err := decodeStream(ctx, st, in, pngchunk.WithTextEncoding(pngchunk.TextLatin1))
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	chunks, err = edit(chunks)
	if err != nil {
		return err
	}

	var out io.Writer
	if outPath == "-" {
		out = cmd.OutOrStdout()
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	n, err := pngchunk.Encode(out, chunks...)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "wrote png", "out", outPath, "chunks", len(chunks), "bytes", n)
	return nil
}

// insertBeforeEnd places extra ahead of IEND, or at the end if there is none
func insertBeforeEnd(chunks []pngchunk.Chunk, extra ...pngchunk.Chunk) []pngchunk.Chunk {
	at := len(chunks)
	for i, c := range chunks {
		if c.Tag() == tag.ImageEnd {
			at = i
			break
		}
	}
	out := make([]pngchunk.Chunk, 0, len(chunks)+len(extra))
	out = append(out, chunks[:at]...)
	out = append(out, extra...)
	return append(out, chunks[at:]...)
}

// NewTextCmd adds tEXt chunks to a PNG
func NewTextCmd(ctx context.Context, st *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "text [uri]",
		Short: "add tEXt chunks",
		Long:  "Copies a PNG, inserting one tEXt chunk per --set key=value ahead of IEND. New entries are stored in the --text-encoding encoding. Existing chunks are kept as is.",
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, _ := cmd.Flags().GetStringArray("set")
			te, err := config.ParseTextEncoding(st.cfg.TextEncoding)
			if err != nil {
				return err
			}
			var texts []pngchunk.Chunk
			for _, p := range pairs {
				key, val, ok := strings.Cut(p, "=")
				if !ok {
					return fmt.Errorf("--set %q: expected key=value", p)
				}
				texts = append(texts, &pngchunk.Text{Key: key, Val: val, Encoding: te})
			}
			return rewrite(ctx, st, cmd, args, func(chunks []pngchunk.Chunk) ([]pngchunk.Chunk, error) {
				return insertBeforeEnd(chunks, texts...), nil
			})
		},
	}
	inputFlags(cmd)
	pf := cmd.PersistentFlags()
	pf.StringP("out", "o", "", "output path, - for stdout")
	pf.StringArray("set", nil, "key=value text entry, repeatable")
	return cmd
}

// NewStripCmd drops ancillary chunks from a PNG
func NewStripCmd(ctx context.Context, st *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strip [uri]",
		Short: "remove ancillary chunks",
		Long:  "Copies a PNG keeping only critical chunks plus any tags named with --keep.",
		RunE: func(cmd *cobra.Command, args []string) error {
			keepTags, _ := cmd.Flags().GetStringSlice("keep")
			keep := map[tag.Tag]bool{}
			for _, k := range keepTags {
				if len(k) != 4 {
					return fmt.Errorf("--keep %q: chunk tags are 4 characters", k)
				}
				keep[tag.New(k)] = true
			}
			return rewrite(ctx, st, cmd, args, func(chunks []pngchunk.Chunk) ([]pngchunk.Chunk, error) {
				var out []pngchunk.Chunk
				for _, c := range chunks {
					if c.Tag().IsCritical() || keep[c.Tag()] {
						out = append(out, c)
						continue
					}
					slog.DebugContext(ctx, "dropping chunk", "tag", c.Tag())
				}
				return out, nil
			})
		},
	}
	inputFlags(cmd)
	pf := cmd.PersistentFlags()
	pf.StringP("out", "o", "", "output path, - for stdout")
	pf.StringSlice("keep", nil, "ancillary chunk tags to keep, e.g. tEXt,gAMA")
	return cmd
}
