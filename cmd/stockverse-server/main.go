package main

import (
	"fmt"
	"os"

	"github.com/bobmcallan/stockverse/internal/app"
	"github.com/bobmcallan/stockverse/internal/server"
)

func main() {
	a, err := app.NewApp(os.Getenv("STOCKVERSE_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	if err := server.Run(a); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
