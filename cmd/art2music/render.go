package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Conceptual-Machines/art2music-api/internal/audio"
	"github.com/Conceptual-Machines/art2music-api/internal/export"
)

func newRenderCmd(opts *globalOptions) *cobra.Command {
	var (
		out        string
		midiOut    string
		sampleRate int
	)

	cmd := &cobra.Command{
		Use:   "render IMAGE",
		Short: "Render an image's composition to WAV (and optionally MIDI)",
		Long: `Render the composition for an image offline.

Examples:
  art2music render drawing.png --out song.wav
  art2music render drawing.png -o song.wav --midi song.mid --seed 42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, params, comp, seed, err := opts.pipeline(args[0])
			if err != nil {
				return err
			}

			samples, err := audio.RenderComposition(comp, sampleRate, seed)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := export.WriteWAV(f, samples, sampleRate); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %.1fs, seed %d)\n",
				out, params.Mood, float64(len(samples))/float64(sampleRate), seed)

			if midiOut == "" {
				return nil
			}
			m, err := os.Create(midiOut)
			if err != nil {
				return err
			}
			if err := export.WriteMIDI(m, comp); err != nil {
				m.Close()
				return err
			}
			if err := m.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", midiOut)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "composition.wav", "Output WAV file")
	cmd.Flags().StringVar(&midiOut, "midi", "", "Also write a MIDI file")
	cmd.Flags().IntVar(&sampleRate, "sample-rate", audio.DefaultSampleRate, "Output sample rate")
	return cmd
}
