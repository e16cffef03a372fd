package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/asstex/pkg/assfile"
)

// exportDoc is the YAML shape written by export.
type exportDoc struct {
	File     string          `yaml:"file"`
	Encoding string          `yaml:"encoding"`
	Entries  []assfile.Entry `yaml:"entries"`
}

func (a *app) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Dump the slot table as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(args[0])
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()

			return enc.Encode(exportDoc{
				File:     s.doc.Path(),
				Encoding: s.doc.Codec().Name(),
				Entries:  s.doc.Entries(),
			})
		},
	}
}
