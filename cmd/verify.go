package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/kozaktomas/lab-kiosk/internal/verify"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <image>",
	Short: "Run a face verification against a local image",
	Long: `Run the full verification pipeline against a local image file, exactly as
the kiosk endpoint would. A successful match consumes the reservation.

Example:
  lab-kiosk verify frame.jpg --lab LAB01`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().String("lab", "", "Lab ID the kiosk is bound to")
	verifyCmd.MarkFlagRequired("lab")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	log := newLogger(cfg)
	ctx := context.Background()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	store, err := openStore(&cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	svc, _, err := newService(ctx, cfg, store, log)
	if err != nil {
		return err
	}

	resp, err := svc.Verify(ctx, data, mustGetString(cmd, "lab"))
	if errors.Is(err, verify.ErrFeatureExtractionFailed) {
		resp = verify.Response{Message: "Feature extraction failed"}
	} else if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
