package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"

	"github.com/GerzaFM/Metronomo-Basico/internal/audio"
	"github.com/GerzaFM/Metronomo-Basico/internal/console"
	"github.com/GerzaFM/Metronomo-Basico/internal/logging"
	"github.com/GerzaFM/Metronomo-Basico/internal/metronome"
)

var (
	flagBPM       int
	flagTimesig   string
	flagSubdiv    int
	flagMarking   string
	flagSound     string
	flagSoundsDir string
	flagMIDIPort    string
	flagVolume      float64
	flagLogLevel    string
	flagMetricsAddr string
)

func main() {
	root := &cobra.Command{
		Use:          "metron",
		Short:        "A drift-corrected command line metronome",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "log level (trace|debug|info|warn|error|off)")

	play := &cobra.Command{
		Use:   "play",
		Short: "Start the metronome",
		Long: `Start the beat engine and control it interactively:
space pauses and resumes, s stops, t taps tempo, +/- nudge the BPM,
1-4 set subdivisions, q quits.`,
		RunE: runPlay,
	}
	play.Flags().IntVar(&flagBPM, "bpm", metronome.DefaultBPM, "tempo in beats per minute")
	play.Flags().StringVar(&flagTimesig, "timesig", "4/4", "time signature in N/D form")
	play.Flags().IntVar(&flagSubdiv, "subdiv", 1, "subdivisions per beat (1-4)")
	play.Flags().StringVar(&flagMarking, "marking", "", "Italian tempo marking (overrides --bpm)")
	play.Flags().StringVar(&flagSound, "sound", "beep", "sound backend: beep, midi or none")
	play.Flags().StringVar(&flagSoundsDir, "sounds-dir", "assets/sounds", "directory with accent/normal/subdivision wav samples")
	play.Flags().StringVar(&flagMIDIPort, "midi-port", "", "MIDI output port name (with --sound midi)")
	play.Flags().Float64Var(&flagVolume, "volume", 1.0, "playback volume, 0 to 1")
	play.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "", "expose prometheus metrics on this address (e.g. :9090), disabled when empty")
	root.AddCommand(play)

	markings := &cobra.Command{
		Use:   "markings",
		Short: "List the known Italian tempo markings",
		Run: func(cmd *cobra.Command, args []string) {
			for _, line := range metronome.MarkingTable() {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
		},
	}
	root.AddCommand(markings)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runPlay(cmd *cobra.Command, args []string) error {
	logging.SetLevel(flagLogLevel)
	logger := logging.GetDefaultLogger().With().Str("component", "cli").Logger()

	tempo, err := pickTempo()
	if err != nil {
		return err
	}
	sig, err := metronome.ParseTimeSignature(flagTimesig)
	if err != nil {
		return err
	}
	pattern, err := metronome.NewBeatPattern(sig, flagSubdiv)
	if err != nil {
		return err
	}
	trigger, err := pickTrigger()
	if err != nil {
		return err
	}
	if err := trigger.Initialize(); err != nil {
		return fmt.Errorf("audio backend failed, use --sound none for a silent run: %w", err)
	}
	if err := trigger.SetVolume(flagVolume); err != nil {
		return err
	}

	engine := metronome.New(
		metronome.WithTempo(tempo),
		metronome.WithPattern(pattern),
		metronome.WithSoundTrigger(trigger),
	)
	defer engine.Close()

	if flagMetricsAddr != "" {
		go func() {
			logger.Info().Str("addr", flagMetricsAddr).Msg("serving metrics")
			if err := http.ListenAndServe(flagMetricsAddr, metricsHandler()); err != nil {
				logger.Warn().Err(err).Msg("metrics listener failed")
			}
		}()
	}

	display := console.NewDisplay(engine)
	display.Start()
	defer display.Stop()

	if err := engine.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		engine.Close()
		display.Stop()
		os.Exit(0)
	}()

	err = console.NewKeyLoop(engine).Run()
	logger.Debug().Err(err).Msg("key loop finished")
	return err
}

func metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func pickTempo() (metronome.TempoConfig, error) {
	if flagMarking != "" {
		return metronome.TempoFromMarking(flagMarking)
	}
	return metronome.NewTempoConfig(flagBPM)
}

func pickTrigger() (metronome.SoundTrigger, error) {
	switch flagSound {
	case "none":
		return metronome.NewNullTrigger(), nil
	case "beep":
		return audio.NewBeepTrigger(flagSoundsDir), nil
	case "midi":
		out, err := midi.FindOutPort(flagMIDIPort)
		if err != nil {
			return nil, fmt.Errorf("finding MIDI out port %q: %w", flagMIDIPort, err)
		}
		return audio.NewMIDITrigger(out), nil
	default:
		return nil, fmt.Errorf("unknown sound backend %q", flagSound)
	}
}
