package main

import (
	"github.com/robotalks/alpharx/pkg/cli/sh"
	"github.com/robotalks/alpharx/pkg/env"

	_ "github.com/robotalks/alpharx/pkg/cli/cmds/rx"
)

func init() {
	env.SetupFlags()
	env.SetupClientFlags()
}

func main() {
	sh.Main()
}
