package main

import (
	"github.com/shawn61cp/calibre2jellyfin/cmd/calibre2jellyfin/commands"
)

func main() {
	commands.Execute()
}
