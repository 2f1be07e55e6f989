package main

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/gogpu/fx"
	"github.com/gogpu/fx/stack"
)

var (
	renderStack   string
	renderOut     string
	renderApply   []string
	renderWidth   int
	renderHeight  int
	renderPreview bool
	renderStrict  bool
)

var renderCmd = &cobra.Command{
	Use:   "render <image>",
	Short: "Render an effect stack over an image",
	Long: `Renders the layers of --stack, followed by any --apply effects with
their default parameters, over the input image and writes the result.

By default the frame is exported at full quality, optionally resized
with --width/--height (a zero side keeps the aspect ratio). --preview
renders the way an interactive session does while a parameter is being
dragged, at the reduced resolution the stack's complexity calls for.

A layer that fails to render is left out of the frame and reported;
--strict turns that into a failure.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&renderStack, "stack", "s", "", "stack JSON file")
	f.StringVarP(&renderOut, "out", "o", "", "output file (default <input>.fx.png)")
	f.StringArrayVarP(&renderApply, "apply", "a", nil, "append an effect with default parameters (repeatable)")
	f.IntVar(&renderWidth, "width", 0, "output width")
	f.IntVar(&renderHeight, "height", 0, "output height")
	f.BoolVar(&renderPreview, "preview", false, "render an interactive preview instead of an export")
	f.BoolVar(&renderStrict, "strict", false, "fail when any layer cannot be rendered")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	in := args[0]
	start := time.Now()
	if renderWidth < 0 || renderHeight < 0 {
		return fmt.Errorf("negative output size %dx%d", renderWidth, renderHeight)
	}

	src, err := imaging.Open(in, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("open %s: %w", in, err)
	}

	e := newEngine()
	defer e.Close()

	if renderStack != "" {
		data, err := os.ReadFile(renderStack)
		if err != nil {
			return fmt.Errorf("read stack: %w", err)
		}
		recs, err := stack.ParseRecords(data)
		if err != nil {
			return fmt.Errorf("parse stack %s: %w", renderStack, err)
		}
		if err := e.LoadRecords(recs); err != nil {
			return fmt.Errorf("load stack %s: %w", renderStack, err)
		}
	}
	for _, id := range renderApply {
		if _, err := e.ApplyEffect(id, nil); err != nil {
			return err
		}
	}

	out, err := frame(cmd, e, src)
	if out == nil {
		return err
	}
	if err != nil {
		if renderStrict {
			return err
		}
		var ue *fx.UnknownEffectError
		if errors.As(err, &ue) {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}

	dst := renderOut
	if dst == "" {
		dst = defaultOutput(in)
	}
	if err := imaging.Save(out, dst); err != nil {
		return fmt.Errorf("save %s: %w", dst, err)
	}

	var size string
	if info, err := os.Stat(dst); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}
	b := out.Bounds()
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d layers, %s×%s px, %s, %s\n",
		dst, e.Stack().Len(),
		humanize.Comma(int64(b.Dx())), humanize.Comma(int64(b.Dy())),
		size, time.Since(start).Round(time.Millisecond))
	return nil
}

func frame(cmd *cobra.Command, e *fx.Engine, src image.Image) (image.Image, error) {
	if renderPreview {
		e.SetInteracting(true)
		fmt.Fprintf(cmd.ErrOrStderr(), "preview scale %.2f\n", e.PreviewScale(e.Stack()))
		return e.PreviewFrame(src, e.Stack())
	}
	return e.ExportFrame(src, e.Stack(), renderWidth, renderHeight)
}

func defaultOutput(in string) string {
	ext := filepath.Ext(in)
	return in[:len(in)-len(ext)] + ".fx.png"
}
