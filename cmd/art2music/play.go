package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Conceptual-Machines/art2music-api/internal/audio"
	"github.com/Conceptual-Machines/art2music-api/internal/audio/speaker"
	"github.com/Conceptual-Machines/art2music-api/internal/compose"
	"github.com/Conceptual-Machines/art2music-api/internal/music"
	"github.com/Conceptual-Machines/art2music-api/internal/palette"
	"github.com/Conceptual-Machines/art2music-api/internal/playback"
)

const playbackPollInterval = 100 * time.Millisecond

func newPlayCmd(opts *globalOptions) *cobra.Command {
	var volume float64

	cmd := &cobra.Command{
		Use:   "play IMAGE",
		Short: "Play an image's composition on the default audio device",
		Long: `Play the composition for an image live. Playback stops on its own
when the piece ends, or on Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := loadImage(args[0])
			if err != nil {
				return err
			}
			seed := opts.resolveSeed()
			params := music.NewSeededMapper(seed).Map(palette.AnalyzeImage(img))

			graph := audio.NewContext(audio.DefaultSampleRate)
			defer graph.Close()

			out, err := speaker.Open(graph)
			if err != nil {
				return err
			}
			defer out.Close()
			out.SetVolume(volume)

			ctrl := playback.NewController(graph,
				playback.WithSeed(seed),
				playback.WithSchedulerOptions(compose.WithDuration(opts.duration)),
			)
			defer ctrl.Close()

			pb, err := ctrl.Play(params)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Playing %s: %s (%.0f BPM, %s, seed %d)\n",
				pb.Mood, pb.Description, pb.Tempo, pb.Scale, seed)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return waitForPlayback(ctx, ctrl, out)
		},
	}

	cmd.Flags().Float64Var(&volume, "volume", 1, "Output volume (0-1)")
	return cmd
}

// waitForPlayback blocks until the controller goes idle, the speaker
// fails, or ctx is cancelled.
func waitForPlayback(ctx context.Context, ctrl *playback.Controller, out *speaker.Speaker) error {
	ticker := time.NewTicker(playbackPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ctrl.Stop()
			return nil
		case <-ticker.C:
			if err := out.Err(); err != nil {
				return err
			}
			if ctrl.Current() == "" {
				return nil
			}
		}
	}
}
