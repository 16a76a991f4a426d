// treetable filters and browses nested records as an expandable table.
package main

import (
	"os"

	"github.com/hupe1980/treetable/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
