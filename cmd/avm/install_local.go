package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/avmtools/avm/internal/hashverify"
	"github.com/avmtools/avm/internal/install"
	"github.com/avmtools/avm/internal/tool"
)

// newInstallLocalCmd installs an archive already present on disk, skipping
// version discovery and the download step entirely.
func newInstallLocalCmd(adapter tool.Adapter, info tool.Info) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install-local <archive>",
		Short: "Install a tool version from a local archive",
		Args:  cobra.ExactArgs(1),
	}
	exactVersion := cmd.Flags().String("version", "", "Version label to record for this install")
	platform := addPlatformFlag(cmd, info)
	flavor := addFlavorFlag(cmd, info)
	sha256Flag := cmd.Flags().String("sha256", "", "Declared SHA-256 digest of the archive, hex-encoded")
	sha1Flag := cmd.Flags().String("sha1", "", "Declared SHA-1 digest of the archive, hex-encoded")
	hashFlag := cmd.Flags().String("hash", "", "Declared digests as YAML, e.g. '{sha256: <hex>}'; --sha1/--sha256 take precedence")
	update := cmd.Flags().Bool("update", false, "Update if the tag is already installed")
	setDefault := cmd.Flags().Bool("default", false, "Set the installed version as the default")
	cmd.MarkFlagRequired("version")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		declared := hashverify.Declared{SHA256: *sha256Flag, SHA1: *sha1Flag}
		if *hashFlag != "" {
			var h struct {
				SHA1   string `yaml:"sha1"`
				SHA256 string `yaml:"sha256"`
			}
			if err := yaml.Unmarshal([]byte(*hashFlag), &h); err != nil {
				return &tool.Error{Kind: tool.ErrKindInvalidInput, Op: "install-local", Err: fmt.Errorf("--hash is not valid YAML: %w", err)}
			}
			if declared.SHA1 == "" {
				declared.SHA1 = h.SHA1
			}
			if declared.SHA256 == "" {
				declared.SHA256 = h.SHA256
			}
		}

		targetTag, p, err := install.StartLocal(install.LocalRequest{
			Tool:        adapter,
			ToolsBase:   paths.toolsBase,
			Platform:    *platform,
			Flavor:      *flavor,
			Version:     *exactVersion,
			ArchivePath: args[0],
			Hash:        declared,
			Update:      *update,
			SetDefault:  *setDefault,
		}, nil)
		if err != nil {
			return err
		}
		fmt.Printf("installing %s as %s\n", info.Name, targetTag)

		return runInstallLoop(p)
	}
	return cmd
}
