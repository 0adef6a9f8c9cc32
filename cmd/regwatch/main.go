package main

import (
	"github.com/civicsignal/regwatch/pkg/cli"
)

func main() {
	cli.Execute()
}
