package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var signatureCmd = &cobra.Command{
	Use:       "signature [primary|guest]",
	Short:     "Perform a vavoo handshake and print the signature",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"primary", "guest"},
	RunE:      signatureRun,
}

func signatureRun(cmd *cobra.Command, args []string) error {
	flow := "guest"
	if len(args) == 1 {
		flow = args[0]
	}

	ext, err := newExtractor()
	if err != nil {
		return err
	}
	defer ext.Close()

	var (
		sig string
		ok  bool
	)
	switch flow {
	case "primary":
		sig, ok = ext.PrimarySignature(cmd.Context(), cfg.Retries, cfg.Delay())
	default:
		sig, ok = ext.GuestSignature(cmd.Context(), cfg.Retries, cfg.Delay())
	}
	if !ok {
		return fmt.Errorf("no %s signature after %d attempts", flow, cfg.Retries)
	}

	return newPrinter(os.Stdout, flagJSON).Signature(flow, sig)
}
