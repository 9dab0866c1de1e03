package main

import (
	"log"

	"github.com/hpcsched/batling/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}
