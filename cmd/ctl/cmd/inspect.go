package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jpfielding/pngchunk.go/pkg/pngchunk"
)

// NewInspectCmd creates the inspect cobra command
func NewInspectCmd(ctx context.Context, st *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [uri]",
		Short: "Summarize PNG header and metadata",
		Long:  "Decodes the chunk stream and prints the image header, derived buffer sizes, palette, text and payload totals.",
		RunE: func(cmd *cobra.Command, args []string) error {
			uri, err := inputURI(cmd, args)
			if err != nil {
				return err
			}
			in, err := openInput(ctx, cmd, uri)
			if err != nil {
				return err
			}
			defer in.Close()
			chunks, palette, err := decodeStream(ctx, st, in)
			if err != nil {
				return fmt.Errorf("parse error: %w", err)
			}
			runInspect(cmd.OutOrStdout(), chunks, palette)
			return nil
		},
	}
	inputFlags(cmd)
	return cmd
}

// runInspect prints a human summary of decoded chunks
func runInspect(out io.Writer, chunks []pngchunk.Chunk, palette bool) {
	fmt.Fprintf(out, "Total chunks: %d\n\n", len(chunks))

	var (
		idatCount, idatBytes int
		texts                []string
		unknown              []string
	)
	fmt.Fprintln(out, "=== Image Header ===")
	for _, c := range chunks {
		switch c := c.(type) {
		case *pngchunk.ImageHeader:
			fmt.Fprintf(out, "Width: %d\n", c.Width)
			fmt.Fprintf(out, "Height: %d\n", c.Height)
			fmt.Fprintf(out, "ColorType: %s (%d channels)\n", c.ColorType, c.ColorType.Channels())
			fmt.Fprintf(out, "BitDepth: %d\n", c.BitDepth)
			fmt.Fprintf(out, "Interlace: %v\n", c.Interlace)
			fmt.Fprintf(out, "BitsPerPixel: %d\n", c.BitsPerPixel())
			fmt.Fprintf(out, "RowSize: %d bytes\n", c.RowSize())
			if raw, err := c.RawSize(); err != nil {
				fmt.Fprintf(out, "RawSize: %v\n", err)
			} else {
				fmt.Fprintf(out, "RawSize: %d bytes\n", raw)
			}
		case *pngchunk.Palette:
			fmt.Fprintf(out, "Palette entries: %d\n", len(c.Entries))
		case *pngchunk.Transparency:
			if c.IsPalette() {
				fmt.Fprintf(out, "Transparency: %d palette alphas\n", len(c.Alpha))
			} else {
				fmt.Fprintf(out, "Transparency key: %v\n", c.Key)
			}
		case *pngchunk.Gamma:
			fmt.Fprintf(out, "Gamma: %.5f\n", c.Float())
		case *pngchunk.SRGB:
			fmt.Fprintf(out, "sRGB intent: %d\n", c.Intent)
		case *pngchunk.ImageData:
			idatCount++
			idatBytes += len(c.Data)
		case *pngchunk.Text:
			texts = append(texts, fmt.Sprintf("%s: %s", c.Key, c.Val))
		case *pngchunk.CompressedText:
			texts = append(texts, fmt.Sprintf("%s: <%d compressed bytes>", c.Key, len(c.Data)))
		case *pngchunk.Unknown:
			unknown = append(unknown, c.Name.String())
		}
	}
	fmt.Fprintf(out, "Palette seen: %v\n", palette)

	fmt.Fprintln(out, "\n=== Image Data ===")
	fmt.Fprintf(out, "IDAT chunks: %d\n", idatCount)
	fmt.Fprintf(out, "Compressed bytes: %d\n", idatBytes)

	if len(texts) > 0 {
		fmt.Fprintln(out, "\n=== Text ===")
		for _, t := range texts {
			fmt.Fprintln(out, t)
		}
	}
	if len(unknown) > 0 {
		fmt.Fprintln(out, "\n=== Unknown Chunks ===")
		for _, u := range unknown {
			fmt.Fprintln(out, u)
		}
	}
}
