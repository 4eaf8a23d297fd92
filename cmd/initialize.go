package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a fresh empty GPT to an image",
	Long: `init opens a device or image that holds no valid GPT, builds an
empty table (protective MBR, both headers, 128-slot partition array) and
writes it out. Requires --writable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, dev, err := openDisk(true)
		if err != nil {
			return err
		}
		defer dev.Close()

		if !d.Writable() {
			return fmt.Errorf("init requires --writable")
		}
		if err := d.WriteTo(dev); err != nil {
			return fmt.Errorf("writing new table: %w", err)
		}
		if !quiet {
			fmt.Printf("initialized empty GPT, disk GUID %s\n", d.DiskGUID())
		}
		return nil
	},
}
