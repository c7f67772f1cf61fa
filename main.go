package main

import (
	"github.com/AzielCF/az-blast/cmd"
)

func main() {
	cmd.Execute()
}
