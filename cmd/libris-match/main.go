package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/libris-match/engine/internal/version"
)

func main() {
	root := newRootCmd()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version.Version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
