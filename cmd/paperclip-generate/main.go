package main

import "github.com/PaperMC/PaperclipMavenPlugin/cmd/paperclip-generate/cmd"

func main() {
	cmd.Execute()
}
