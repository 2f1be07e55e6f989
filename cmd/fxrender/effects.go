package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/fx/catalog"
)

var (
	effectsCategory string
	effectsFree     bool
	effectsJSON     bool
)

var effectsCmd = &cobra.Command{
	Use:   "effects",
	Short: "List the effect catalog",
	Args:  cobra.NoArgs,
	RunE:  runEffects,
}

func init() {
	effectsCmd.Flags().StringVar(&effectsCategory, "category", "", "only effects of this category")
	effectsCmd.Flags().BoolVar(&effectsFree, "free", false, "only effects that are not premium gated")
	effectsCmd.Flags().BoolVar(&effectsJSON, "json", false, "print descriptors as JSON")
	rootCmd.AddCommand(effectsCmd)
}

func runEffects(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	e := newEngine()
	defer e.Close()

	cat := catalog.Category(effectsCategory)
	if cat != "" && len(e.ListEffects(cat)) == 0 {
		return fmt.Errorf("unknown category %q (have %v)", effectsCategory, e.Catalog().Categories())
	}

	var list []catalog.Descriptor
	for _, d := range e.ListEffects(cat) {
		if effectsFree && d.Premium {
			continue
		}
		list = append(list, d)
	}

	if effectsJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	fmt.Fprintln(w)
	for _, d := range list {
		names := make([]string, len(d.Params))
		for i, p := range d.Params {
			names[i] = p.Name
		}
		premium := ""
		if d.Premium {
			premium = "premium"
		}
		fmt.Fprintf(w, "  %-14s %-10s %4.2f  %-7s  %s\n",
			d.ID, d.Category, d.Complexity, premium, strings.Join(names, ", "))
	}
	fmt.Fprintf(w, "\n  %d effects\n\n", len(list))
	return nil
}
