package cmd

import (
	"fmt"

	"github.com/deploymenttheory/go-gpt/internal/device"
	"github.com/deploymenttheory/go-gpt/internal/disk"
	"github.com/deploymenttheory/go-gpt/internal/types"
)

// openDisk wires the configured image device to the GPT core using the
// global flags, with flag values overriding the loaded config.
func openDisk(initializeEmpty bool) (*disk.Disk, *device.ImageDevice, error) {
	if devicePath == "" {
		return nil, nil, fmt.Errorf("no device specified, use --device")
	}

	config, err := device.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if blockSize != 0 {
		config.LogicalBlockSize = blockSize
	}
	if writable {
		config.Writable = true
	}

	dev, err := device.OpenImage(devicePath, config)
	if err != nil {
		return nil, nil, err
	}

	var sectorSize types.SectorSize
	if blockSize != 0 {
		sectorSize, err = types.NewSectorSize(blockSize)
		if err != nil {
			dev.Close()
			return nil, nil, err
		}
	}

	d, err := disk.Open(dev, disk.Options{
		Writable:        config.Writable,
		SectorSize:      sectorSize,
		InitializeEmpty: initializeEmpty || config.InitializeEmpty,
	})
	if err != nil {
		dev.Close()
		return nil, nil, err
	}
	return d, dev, nil
}
