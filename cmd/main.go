package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"fxpub/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		logrus.WithError(err).Error("fxpub terminated with error")
		os.Exit(1)
	}
}
