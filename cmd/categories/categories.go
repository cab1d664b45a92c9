// Package categories lists the expense taxonomy.
package categories

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rgriggs0072/fliptrack-ai/internal/taxonomy"
)

// Cmd represents the categories command.
var Cmd = &cobra.Command{
	Use:   "categories",
	Short: "List the expense categories",
	Long:  `List every category in the fixed rehab expense taxonomy.`,
	Run: func(cmd *cobra.Command, args []string) {
		for _, label := range taxonomy.All() {
			fmt.Println(label)
		}
	},
}
