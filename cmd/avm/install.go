package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avmtools/avm/internal/install"
	"github.com/avmtools/avm/internal/pipeline"
	"github.com/avmtools/avm/internal/progress"
	"github.com/avmtools/avm/internal/tool"
)

func newInstallCmd(adapter tool.Adapter, info tool.Info) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install a specific tool version",
	}
	exactVersion := cmd.Flags().String("version", "", "Specific version to install")
	major, lts := addMajorLTSFlags(cmd)
	platform := addPlatformFlag(cmd, info)
	flavor := addFlavorFlag(cmd, info)
	update := cmd.Flags().Bool("update", false, "Update if the tag is already installed")
	setDefault := cmd.Flags().Bool("default", false, "Set the installed version as the default")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		var exactPtr *string
		if *exactVersion != "" {
			exactPtr = exactVersion
		}
		filter, err := buildFilter(major, lts, exactPtr)
		if err != nil {
			return err
		}

		targetTag, p, err := install.Start(rootCtx, paths.client, install.Request{
			Tool:       adapter,
			ToolsBase:  paths.toolsBase,
			Platform:   *platform,
			Flavor:     *flavor,
			Filter:     filter,
			Update:     *update,
			SetDefault: *setDefault,
		}, nil)
		if err != nil {
			return err
		}
		fmt.Printf("installing %s as %s\n", info.Name, targetTag)

		return runInstallLoop(p)
	}
	return cmd
}

// runInstallLoop drives p to Stopped, rendering a progress bar during
// Downloading and a spinner during Extracting. Info is inferred at the
// call site and never needs naming here.
func runInstallLoop[Info any](p *pipeline.Pipeline[Info]) error {
	var bar *progress.Bar
	var spinner *progress.Spinner
	showProgress := progress.ShouldShowProgress()
	if showProgress {
		bar = progress.NewBar(os.Stderr)
	}

	for {
		status := p.Status()
		if status.Stopped {
			if bar != nil {
				bar.Finish()
			}
			if spinner != nil {
				spinner.Stop()
			}
			break
		}

		switch status.Name {
		case "Downloading":
			if showProgress {
				bar.Update(status.Downloaded, status.Total)
			}
		case "Extracting":
			if bar != nil {
				bar.Finish()
				bar = nil
			}
			if spinner == nil && showProgress {
				spinner = progress.NewSpinner(os.Stderr)
				spinner.Start("Extracting...")
			} else if spinner == nil {
				fmt.Println("Extracting...")
			}
		}

		if err := p.Advance(rootCtx); err != nil {
			return err
		}
	}
	return nil
}
