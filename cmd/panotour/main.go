package main

import (
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/pflag"

	"github.com/smasonuk/panotour"
	"github.com/smasonuk/panotour/viewer"
)

func main() {
	configFile := pflag.String("config", "", "Path to a yaml or json config file")
	tourFile := pflag.String("tour", "", "Tour content file (overrides the config)")
	address := pflag.String("path", "", "Address path to open, e.g. /tour/22")
	pflag.Parse()

	cfg, err := panotour.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *tourFile != "" {
		cfg.Tour = *tourFile
	}

	log := panotour.NewLogger(cfg.Log, os.Stderr)

	tour, err := panotour.LoadTour(cfg.Tour)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.Tour).Msg("Error loading tour")
	}
	for _, issue := range tour.Validate() {
		log.Warn().Int("panorama", issue.PanoramaID).Str("kind", issue.Kind.String()).Msg(issue.Detail)
	}

	assets := os.DirFS(cfg.Assets.BaseDir)
	loader := panotour.NewFileLoader(assets, cfg.Assets.MaxTextureSize, cfg.Assets.CacheEntries, log)

	game, err := viewer.NewGame(cfg, tour, loader, assets, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating viewer")
	}
	defer game.Close()

	if err := game.Start(*address); err != nil {
		log.Fatal().Err(err).Msg("Error opening tour")
	}

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(game); err != nil {
		log.Error().Err(err).Msg("Viewer stopped")
	}
}
