package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/WessleyAI/mediacrawl/engine/schema"
	"github.com/WessleyAI/mediacrawl/pkg/tableview"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List supported platforms",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		all := schema.All()
		if rootFlags.format == "json" {
			type row struct {
				Code        string `json:"code"`
				Name        string `json:"name"`
				DisplayName string `json:"display_name"`
				DataDir     string `json:"data_dir"`
			}
			rows := make([]row, len(all))
			for i, s := range all {
				rows[i] = row{string(s.Source), s.Name, s.DisplayName, s.DataDir}
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		}
		tb := tableview.New(tableview.ParseMode(rootFlags.format), "Sources").
			Header("Code", "Name", "Platform", "Data dir")
		for _, s := range all {
			tb.Row(s.Source, s.Name, s.DisplayName, s.DataDir)
		}
		_, err := fmt.Fprintln(out, tb.String())
		return err
	},
}
