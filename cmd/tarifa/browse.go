package main

import (
	"github.com/Veraticus/tarifa/internal/config"
	"github.com/Veraticus/tarifa/internal/controller"
	"github.com/Veraticus/tarifa/internal/tui"
	"github.com/Veraticus/tarifa/internal/tui/themes"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func browseCmd() *cobra.Command {
	var (
		exportDir string
		mouse     bool
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the rate table interactively",
		Long: `Open the interactive rate table.

Keys: ←/→ page, 1-7 sort by column (again to flip), f filter, r reset filters,
space select for comparison, c compare, enter details, e export CSV, q quit.

Logs are discarded unless --log-file is set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, settings, err := initClient()
			if err != nil {
				return err
			}

			return tui.Run(cmd.Context(), controller.New(client),
				tui.WithTheme(themes.GetTheme(settings.Theme)),
				tui.WithTimeout(settings.Timeout),
				tui.WithExportDir(config.ExpandPath(exportDir)),
				tui.WithMouse(mouse),
			)
		},
	}
	cmd.Flags().StringVar(&exportDir, "export-dir", ".", "directory CSV exports are written to")
	cmd.Flags().BoolVar(&mouse, "mouse", false, "enable mouse support")
	cmd.Flags().String("theme", "", "color theme (default, catppuccin-mocha)")
	_ = viper.BindPFlag(config.KeyTheme, cmd.Flags().Lookup("theme"))

	return cmd
}
