package main

import (
	"context"
	"os"

	"fjacquet/camt-xlsx/cmd/convert"
	"fjacquet/camt-xlsx/cmd/inspect"
	"fjacquet/camt-xlsx/cmd/profiles"
	"fjacquet/camt-xlsx/cmd/root"
	"fjacquet/camt-xlsx/cmd/serve"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(convert.Cmd)
	root.Cmd.AddCommand(profiles.Cmd)
	root.Cmd.AddCommand(inspect.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
}

func main() {
	if err := root.Cmd.ExecuteContext(context.Background()); err != nil {
		root.Cmd.PrintErrln(err)
		os.Exit(1)
	}
}
