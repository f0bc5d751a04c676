//go:build !cgo

package main

import (
	"errors"

	"go.uber.org/zap"

	"github.com/appengine-ltd/clanker-quest/internal/config"
	"github.com/appengine-ltd/clanker-quest/internal/game"
)

const guiAvailable = false

func runGUI(*game.Session, *zap.Logger, <-chan config.Config) error {
	return errors.New("the graphical client requires a cgo build (raylib); run with -tui")
}
