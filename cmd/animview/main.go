package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/animengine/common"
	"github.com/milk9111/animengine/prefabs"
)

func main() {
	configName := flag.String("config", prefabs.EngineConfigFile, "engine config prefab (prefabs/ on disk wins over the embedded copy)")
	clipName := flag.String("clip", "", "clip to select at start, name or layer/name")
	watch := flag.Bool("watch", false, "reload clip prefabs and scripts when they change under prefabs/")
	debug := flag.Bool("debug", false, "log engine activity to stderr")
	flag.Parse()

	if *debug {
		common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	game, err := NewGame(*configName, *clipName)
	if err != nil {
		log.Fatal(err)
	}

	if *watch {
		dirs := prefabs.WatchDirs()
		if len(dirs) == 0 {
			log.Printf("watch: no prefabs/clips or prefabs/scripts directory here")
		} else {
			w, err := prefabs.NewWatcher(dirs...)
			if err != nil {
				log.Fatal(err)
			}
			defer w.Close()
			game.watcher = w
		}
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("animview")

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
