// Command dplace2cldf converts D-PLACE datasets into CLDF StructureDatasets.
package main

import "dplace2cldf/internal/cli"

func main() {
	cli.Execute()
}
