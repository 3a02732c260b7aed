package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/cottand/extunify/cmd"
)

func main() {
	err := cmd.NewRootCmd().Execute()
	if err != nil {
		if !errors.Is(err, cmd.ErrFailed) {
			_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
