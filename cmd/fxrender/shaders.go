package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/gogpu/fx/shader"
)

var shadersCmd = &cobra.Command{
	Use:   "shaders",
	Short: "Compile every embedded shader and report failures",
	Args:  cobra.NoArgs,
	RunE:  runShaders,
}

func init() {
	rootCmd.AddCommand(shadersCmd)
}

func runShaders(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	e := newEngine()
	defer e.Close()
	pc := e.Programs()

	fmt.Fprintln(w)
	var total uint64
	for _, ref := range shader.Refs() {
		start := time.Now()
		p, err := pc.LoadRef(ref)
		if err != nil {
			fmt.Fprintf(w, "  FAIL %-16s %v\n", ref, err)
			continue
		}
		size := uint64(len(p.SPIRV()) * 4)
		total += size
		fmt.Fprintf(w, "  ok   %-16s %8s  %016x  %s\n",
			ref, humanize.Bytes(size), p.Hash(), time.Since(start).Round(time.Microsecond))
	}

	st := pc.Stats()
	fmt.Fprintf(w, "\n  %d compiled, %d failed, %s of SPIR-V\n\n",
		st.Entries-st.Failed, st.Failed, humanize.Bytes(total))
	if st.Failed > 0 {
		return fmt.Errorf("%d shaders failed to compile", st.Failed)
	}
	return nil
}
