package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		var verr *validationError
		if !errors.As(err, &verr) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
