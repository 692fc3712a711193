package main

import (
	"context"

	"github.com/groundcrew/runway/cmd/cli"
	"github.com/groundcrew/runway/internal/tracing"
	"github.com/groundcrew/runway/internal/util"
)

func main() {
	util.SetLogLevel()

	_, shutdown := tracing.InitOtel()
	defer shutdown()

	cli.Invoke(context.Background())
}
