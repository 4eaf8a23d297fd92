package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Rewrite a damaged GPT copy from its valid counterpart",
	Long: `repair opens the device, reports which copy (if any) had to be
rebuilt in memory from its counterpart, and with --writable persists the
repaired table back to the device.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, dev, err := openDisk(false)
		if err != nil {
			return err
		}
		defer dev.Close()

		if !d.NeedsRepair() {
			if !quiet {
				fmt.Println("both GPT copies are valid and consistent, nothing to do")
			}
			return nil
		}
		if !quiet {
			fmt.Printf("damaged table recovered in memory: %s\n", d.RepairState())
		}

		if !d.Writable() {
			fmt.Println("re-run with --writable to persist the repair")
			return nil
		}
		if err := d.WriteTo(dev); err != nil {
			return fmt.Errorf("persisting repaired table: %w", err)
		}
		if !quiet {
			fmt.Println("repaired table written")
		}
		return nil
	},
}
