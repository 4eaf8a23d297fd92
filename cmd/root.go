package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	devicePath string
	blockSize  uint64
	writable   bool
)

var rootCmd = &cobra.Command{
	Use:   "gptctl",
	Short: "Inspect, validate and repair GPT partition tables",
	Long: `gptctl reads, validates, repairs and writes GUID Partition Table
metadata on block devices or disk images, including disks with
non-standard logical sector sizes (512B through 16K and beyond).

It keeps both GPT copies honest: a corrupt primary header is recovered
from a valid backup and vice versa, with every CRC32 recomputed on write.

Commands:
  inspect     Show header fields and reconciliation state
  list        List partitions
  repair      Rewrite a damaged copy from its valid counterpart
  init        Write a fresh empty GPT to an image`,
	Version: "0.1.0-dev",
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output except errors")
	rootCmd.PersistentFlags().StringVar(&devicePath, "device", "", "path to the device or disk image")
	rootCmd.PersistentFlags().Uint64Var(&blockSize, "block-size", 0, "logical block size in bytes (0 = configured/default)")
	rootCmd.PersistentFlags().BoolVar(&writable, "writable", false, "open the device writable")

	rootCmd.AddCommand(
		inspectCmd,
		listCmd,
		repairCmd,
		initCmd,
	)
}
