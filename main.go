package main

import (
	"log"

	"github.com/diffy-scm/diffy-go/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		log.Fatalf("diffy-layout: %v", err)
	}
}
