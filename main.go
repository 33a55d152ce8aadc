package main

import (
	"github.com/ganttline/ganttline/cmd"
	"github.com/ganttline/ganttline/internal/logger"
)

func main() {
	defer logger.HandlePanic()
	cmd.Execute()
}
