// Version command for the jtl CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is overridable at build time with
// -ldflags "-X main.version=...".
var version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the jtl version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("jtl", version)
	},
}
