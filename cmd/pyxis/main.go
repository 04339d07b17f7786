package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hollis-cloud/pyxis"
)

func main() {
	err := pyxis.Run(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}
