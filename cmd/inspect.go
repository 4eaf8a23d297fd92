package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-gpt/internal/interfaces"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show GPT header fields and reconciliation state",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, dev, err := openDisk(false)
		if err != nil {
			return err
		}
		defer dev.Close()

		primary, backup := d.Headers()

		if !quiet {
			fmt.Printf("Disk GUID:       %s\n", d.DiskGUID())
			fmt.Printf("Sector size:     %s bytes\n", d.SectorSize())
			fmt.Printf("Protective MBR:  %v\n", d.HasProtectiveMBR())
			fmt.Printf("Needs repair:    %v", d.NeedsRepair())
			if d.NeedsRepair() {
				fmt.Printf(" (%s)", d.RepairState())
			}
			fmt.Println()
			fmt.Printf("Partitions used: %d\n", len(d.UsedPartitions()))
		}
		if verbose {
			printHeader(primary)
			printHeader(backup)
		}
		return nil
	},
}

func printHeader(h interfaces.HeaderView) {
	fmt.Printf("\n%s header:\n", h.Role)
	fmt.Printf("  revision:        %d.%d\n", h.Revision>>16, h.Revision&0xFFFF)
	fmt.Printf("  current LBA:     %d\n", h.CurrentLBA)
	fmt.Printf("  backup LBA:      %d\n", h.BackupLBA)
	fmt.Printf("  usable LBAs:     %d - %d\n", h.FirstUsableLBA, h.LastUsableLBA)
	fmt.Printf("  entries LBA:     %d\n", h.EntriesLBA)
	fmt.Printf("  entries:         %d x %d bytes\n", h.EntryCount, h.EntrySize)
}
