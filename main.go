package main

import (
	"github.com/solfarms/solfarm/cmd"
)

func main() {
	cmd.Execute()
}
