package main

import (
	"github.com/dicetray/dicetray/internal/cli"
)

func main() {
	cli.Execute()
}
