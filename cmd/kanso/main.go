package main

import (
	"os"
	"time"
	_ "time/tzdata"

	"github.com/comitanigiacomo/kanso-grid/internal/cli/ui"
)

func main() {
	if err := newRootCmd(time.Now).Execute(); err != nil {
		ui.Err(os.Stderr, err.Error())
		os.Exit(1)
	}
}
