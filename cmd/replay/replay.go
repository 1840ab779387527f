package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"ProjectVTO/pkg/codec"
	"ProjectVTO/pkg/vto"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type replayOptions struct {
	ViewportWidth  int
	ViewportHeight int
	Classify       bool
	TryOn          bool
	IrisSizeMM     float64
	Every          int
	Quiet          bool
}

type replaySummary struct {
	Frames   int
	Faces    int
	Rejected int
	Last     vto.FrameResult
}

func newReplayCmd() *cobra.Command {
	opts := replayOptions{
		TryOn:      true,
		IrisSizeMM: vto.IrisSizeMM,
	}

	cmd := &cobra.Command{
		Use:   "replay <file.jsonl>",
		Short: "Stream a JSON-lines landmark recording through a processor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frames, err := readRecording(cmd, args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			for i := range frames {
				if flags.Changed("viewport-width") || flags.Changed("viewport-height") {
					frames[i].Viewport = vto.Viewport{Width: opts.ViewportWidth, Height: opts.ViewportHeight}
				}
				if flags.Changed("classify") {
					frames[i].ClassifyShape = opts.Classify
				}
				if flags.Changed("try-on") {
					tryOn := opts.TryOn
					frames[i].TryOn = &tryOn
				}
			}

			summary, err := runReplay(cmd, frames, opts)
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), summary)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.ViewportWidth, "viewport-width", 0, "Override the viewport width of every frame")
	flags.IntVar(&opts.ViewportHeight, "viewport-height", 0, "Override the viewport height of every frame")
	flags.BoolVar(&opts.Classify, "classify", false, "Classify the face shape")
	flags.BoolVar(&opts.TryOn, "try-on", true, "Resolve the try-on transform")
	flags.Float64Var(&opts.IrisSizeMM, "iris-size", vto.IrisSizeMM, "Reference iris diameter in millimetres")
	flags.IntVarP(&opts.Every, "every", "n", 0, "Print every Nth frame result (0 prints none)")
	flags.BoolVarP(&opts.Quiet, "quiet", "q", false, "Hide the progress bar")

	return cmd
}

func readRecording(cmd *cobra.Command, path string) ([]codec.LandmarkFrame, error) {
	if path == "-" {
		return codec.ReadRecording(cmd.InOrStdin())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	return codec.ReadRecording(f)
}

func runReplay(cmd *cobra.Command, frames []codec.LandmarkFrame, opts replayOptions) (replaySummary, error) {
	cfg := vto.DefaultConfig()
	cfg.IrisSizeMM = opts.IrisSizeMM
	if err := cfg.Validate(); err != nil {
		return replaySummary{}, err
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	processor := vto.NewProcessor(cfg, vto.WithLogger(logrus.NewEntry(logger)))

	barWriter := cmd.ErrOrStderr()
	if opts.Quiet {
		barWriter = io.Discard
	}
	bar := progressbar.NewOptions(len(frames),
		progressbar.OptionSetDescription("Replaying"),
		progressbar.OptionSetWriter(barWriter),
		progressbar.OptionShowCount(),
	)
	defer bar.Finish()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var summary replaySummary
	for i, frame := range frames {
		if ctx != nil && ctx.Err() != nil {
			return summary, ctx.Err()
		}
		_ = bar.Add(1)

		face, err := frame.PrimaryFace()
		if err != nil {
			summary.Rejected++
			fmt.Fprintf(cmd.ErrOrStderr(), "\nframe %d rejected: %v\n", i+1, err)
			continue
		}

		result := processor.Process(face, frame.Options())
		summary.Frames++
		if result.FaceDetected {
			summary.Faces++
		}
		summary.Last = result

		if opts.Every > 0 && summary.Frames%opts.Every == 0 {
			fmt.Fprintf(out, "frame %d: pd=%.2f width=%.2f bridge=%.2f height=%.2f stale=%t\n",
				result.FrameIndex, result.DetectedPD, result.Width, result.Bridge, result.Height, result.Stale)
		}
	}

	return summary, nil
}

func printSummary(out io.Writer, s replaySummary) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	fmt.Fprintln(w, "------\t-----")
	fmt.Fprintf(w, "frames\t%d\n", s.Frames)
	fmt.Fprintf(w, "faces\t%d\n", s.Faces)
	fmt.Fprintf(w, "rejected\t%d\n", s.Rejected)
	fmt.Fprintf(w, "samples\t%d\n", s.Last.Samples)
	fmt.Fprintf(w, "pd (mm)\t%.2f\n", s.Last.DetectedPD)
	fmt.Fprintf(w, "pd left/right (mm)\t%.2f / %.2f\n", s.Last.PDLeft, s.Last.PDRight)
	fmt.Fprintf(w, "frame width (mm)\t%.2f\n", s.Last.Width)
	fmt.Fprintf(w, "bridge (mm)\t%.2f\n", s.Last.Bridge)
	fmt.Fprintf(w, "face height (mm)\t%.2f\n", s.Last.Height)
	if s.Last.FaceShape != "" {
		fmt.Fprintf(w, "face shape\t%s\n", s.Last.FaceShape)
		fmt.Fprintf(w, "face size\t%s\n", s.Last.FaceSize)
	}
	fmt.Fprintf(w, "fov (deg)\t%.2f\n", s.Last.FOV)
	return w.Flush()
}
