package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/cli"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/dataset"
)

func main() {
	err := cli.Execute()
	if err == nil {
		return
	}

	var missing *dataset.MissingInputError
	if errors.As(err, &missing) {
		fmt.Fprintln(os.Stderr, "Error: unified data file not found. Tried:")
		for _, p := range missing.Tried {
			fmt.Fprintf(os.Stderr, "  - %s\n", p)
		}
		fmt.Fprintln(os.Stderr, "Set --enriched/--raw or data.enriched_path/data.raw_path in the config.")
		os.Exit(2)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
