package main

import (
	"log"

	"docvault/cmd/dv/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		log.Fatal(err)
	}
}
