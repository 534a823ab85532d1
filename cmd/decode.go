package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nkootstra/framescope/internal/inspect"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <hex>...",
	Short: "Split and parse hex dumps given on the command line",
	Example: `  framescope decode 5a0005000102aabbccdd
  framescope decode --verbose "5a 00 05 00 01 02 aa bb cc dd"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDecode,
}

func runDecode(cmd *cobra.Command, args []string) error {
	cfg, log, in, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	filter, err := inspect.FilterFromConfig(cfg.Filter)
	if err != nil {
		return err
	}

	printer := newPrinter(cfg)
	var failed int
	for _, arg := range args {
		for _, r := range in.InspectHex(arg) {
			if !filter.Match(r) {
				continue
			}
			if r.Err != nil {
				failed++
			}
			if err := printer.Print(r); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d frame(s) could not be parsed", failed)
	}
	return nil
}
