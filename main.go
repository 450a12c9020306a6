package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"fjacquet/invoice-extract/cmd/batch"
	"fjacquet/invoice-extract/cmd/extract"
	"fjacquet/invoice-extract/cmd/root"
	"fjacquet/invoice-extract/cmd/serve"
	"fjacquet/invoice-extract/cmd/templates"
	"fjacquet/invoice-extract/internal/config"
)

func init() {
	// .env first so LOG_LEVEL applies to anything logged during start-up.
	_, _ = config.LoadEnv()
	configureLogLevel()

	root.Init()

	root.Cmd.AddCommand(extract.Cmd)
	root.Cmd.AddCommand(batch.Cmd)
	root.Cmd.AddCommand(templates.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
}

// configureLogLevel sets the global logrus level from LOG_LEVEL.
func configureLogLevel() {
	level, err := logrus.ParseLevel(strings.ToLower(config.GetEnv("LOG_LEVEL", "info")))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
