package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List partitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, dev, err := openDisk(false)
		if err != nil {
			return err
		}
		defer dev.Close()

		parts := d.UsedPartitions()
		if len(parts) == 0 {
			if !quiet {
				fmt.Println("no partitions")
			}
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SLOT\tNAME\tFIRST LBA\tLAST LBA\tSECTORS\tTYPE GUID")
		for _, p := range parts {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%s\n",
				p.Slot, p.Name, p.FirstLBA, p.LastLBA, p.LastLBA-p.FirstLBA+1, p.TypeGUID)
		}
		return w.Flush()
	},
}
