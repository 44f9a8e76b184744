package main

import (
	"gallery.GO/cmd"
	"gallery.GO/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}
