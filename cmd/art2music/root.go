package main

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Conceptual-Machines/art2music-api/internal/compose"
	"github.com/Conceptual-Machines/art2music-api/internal/logger"
	"github.com/Conceptual-Machines/art2music-api/internal/music"
	"github.com/Conceptual-Machines/art2music-api/internal/palette"
)

type globalOptions struct {
	seed     uint64
	seedSet  bool
	duration float64
	verbose  bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "art2music",
		Short: "Turn drawings into short generative compositions",
		Long: `art2music analyses the colours of a drawing, maps them to a mood,
tempo and scale, and composes a short multi-layer piece from them.

Pipeline: image → colour statistics → music parameters → schedule → audio`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			opts.seedSet = cmd.Flags().Changed("seed")
			if opts.verbose {
				return logger.Init("development")
			}
			logger.SetLogger(zap.NewNop())
			return nil
		},
	}

	root.PersistentFlags().Uint64Var(&opts.seed, "seed", 0, "Random seed (default: random)")
	root.PersistentFlags().Float64VarP(&opts.duration, "duration", "d", compose.DefaultDuration, "Composition length in seconds")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose logging")

	root.AddCommand(
		newAnalyzeCmd(opts),
		newRenderCmd(opts),
		newPlayCmd(opts),
		newServeCmd(),
	)
	return root
}

// resolveSeed returns the --seed value or a fresh random seed
func (o *globalOptions) resolveSeed() uint64 {
	if o.seedSet {
		return o.seed
	}
	return rand.Uint64()
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := palette.DecodeImage(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// pipeline runs the analysis pipeline for one image
func (o *globalOptions) pipeline(path string) (palette.Statistics, music.Parameters, compose.Composition, uint64, error) {
	img, err := loadImage(path)
	if err != nil {
		return palette.Statistics{}, music.Parameters{}, compose.Composition{}, 0, err
	}
	seed := o.resolveSeed()
	stats := palette.AnalyzeImage(img)
	params := music.NewSeededMapper(seed).Map(stats)
	comp := compose.NewScheduler(compose.WithDuration(o.duration), compose.WithSeed(seed)).Schedule(params)
	return stats, params, comp, seed, nil
}

type analysis struct {
	Seed        uint64             `json:"seed"`
	Statistics  palette.Statistics `json:"statistics"`
	Parameters  music.Parameters   `json:"parameters"`
	Description string             `json:"description"`
	Search      music.Search       `json:"search"`
	Layers      map[string]int     `json:"layers"`
}

func newAnalyzeCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze IMAGE",
		Short: "Print colour statistics and music parameters for an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, params, comp, seed, err := opts.pipeline(args[0])
			if err != nil {
				return err
			}

			a := analysis{
				Seed:        seed,
				Statistics:  stats,
				Parameters:  params,
				Description: music.DescribeMood(params.Mood),
				Search:      music.SearchFor(stats),
				Layers:      map[string]int{},
			}
			for _, l := range compose.Layers {
				a.Layers[string(l)] = len(comp.Layer(l))
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(a)
			}
			printAnalysis(cmd.OutOrStdout(), a)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func printAnalysis(w io.Writer, a analysis) {
	s, p := a.Statistics, a.Parameters
	fmt.Fprintf(w, "Seed:        %d\n", a.Seed)
	fmt.Fprintf(w, "Average RGB: %.0f, %.0f, %.0f\n", s.AverageR, s.AverageG, s.AverageB)
	fmt.Fprintf(w, "Brightness:  %.1f\n", s.Brightness)
	fmt.Fprintf(w, "Coloured:    %d samples (drawing: %t)\n", s.ColoredPixels, s.HasDrawing())
	fmt.Fprintf(w, "Mood:        %s (%s)\n", p.Mood, a.Description)
	fmt.Fprintf(w, "Tempo:       %.0f BPM\n", p.Tempo)
	fmt.Fprintf(w, "Scale:       %s from %.2f Hz\n", p.Scale, p.BaseFrequency)
	fmt.Fprintf(w, "Patterns:    %s / %s / %s\n", p.ChordProgression, p.MelodyPattern, p.RhythmPattern)
	fmt.Fprintf(w, "Voice:       %s, cutoff %.0f Hz\n", p.Waveform, p.FilterCutoff)
	fmt.Fprintf(w, "Search:      %q\n", a.Search.Query)
	for _, l := range compose.Layers {
		fmt.Fprintf(w, "  %-10s %d events\n", l, a.Layers[string(l)])
	}
}
