//go:build cgo

package main

import (
	"go.uber.org/zap"

	"github.com/appengine-ltd/clanker-quest/internal/config"
	"github.com/appengine-ltd/clanker-quest/internal/game"
	"github.com/appengine-ltd/clanker-quest/internal/gui"
)

const guiAvailable = true

func runGUI(session *game.Session, logger *zap.Logger, reloads <-chan config.Config) error {
	app := gui.NewApp(gui.AppConfig{
		Version:   version,
		Commit:    commit,
		BuildDate: date,
	}, session, gui.WithLogger(logger.Named("gui")), gui.WithReloads(reloads))
	return app.Run()
}
