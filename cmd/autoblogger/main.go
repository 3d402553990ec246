package main

import (
	"github.com/animanial5v2-cloud/youtube-auto-blogger/cmd/cmd"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/logger"
)

func main() {
	logger.Init()
	cmd.Execute()
}
