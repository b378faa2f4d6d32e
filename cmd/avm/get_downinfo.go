package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/avmtools/avm/internal/tool"
)

// downInfoYAML is the get-downinfo rendering: download info shape without
// the internal hashverify.Declared type's field names.
type downInfoYAML struct {
	Version string `yaml:"version"`
	Major   int    `yaml:"major_version"`
	LTS     bool   `yaml:"is_lts"`
	URL     string `yaml:"url"`
	SHA1    string `yaml:"sha1,omitempty"`
	SHA256  string `yaml:"sha256,omitempty"`
}

func newGetDownInfoCmd(adapter tool.Adapter, info tool.Info) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get-downinfo",
		Short: "Get download info",
	}
	exactVersion := cmd.Flags().String("version", "", "Specific version to resolve")
	major, lts := addMajorLTSFlags(cmd)
	platform := addPlatformFlag(cmd, info)
	flavor := addFlavorFlag(cmd, info)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		var exactPtr *string
		if *exactVersion != "" {
			exactPtr = exactVersion
		}
		filter, err := buildFilter(major, lts, exactPtr)
		if err != nil {
			return err
		}

		down, err := adapter.GetDownInfo(rootCtx, *platform, *flavor, filter)
		if err != nil {
			return &tool.Error{Kind: tool.ErrKindNetwork, Op: "get-downinfo", Err: err}
		}

		out, err := yaml.Marshal(downInfoYAML{
			Version: down.Version.Raw,
			Major:   down.Version.MajorVersion,
			LTS:     down.Version.IsLTS,
			URL:     down.URL,
			SHA1:    down.Hash.SHA1,
			SHA256:  down.Hash.SHA256,
		})
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	}
	return cmd
}
