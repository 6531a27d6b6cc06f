// Command gamebot runs the Telegram bot that organises group games and
// trainings.
package main

import (
	"log"
	"os"

	"github.com/m3rciful/gamebot/core/cmd"
	"github.com/m3rciful/gamebot/internal/app"
)

func main() {
	err := cmd.Run(cmd.Options{
		Name:              "gamebot",
		Args:              os.Args[1:],
		ConfigEnvVar:      "GAMEBOT_CONFIG",
		DefaultConfigPath: "config.yaml",
		LoadConfig:        app.LoadConfig,
		Bootstrap:         app.Bootstrap,
	})
	if err != nil {
		log.Fatalf("gamebot: %v", err)
	}
}
