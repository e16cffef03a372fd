package main

import (
	"fmt"
	"os"
	"path"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/asstex/pkg/encoding"
	"github.com/Faultbox/asstex/pkg/formats"
)

func (a *app) importCmd() *cobra.Command {
	var (
		prefix string
		dir    string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "import <model.rsm|ground.gnd> <file>",
		Short: "Create an ASS file from the texture table of an RSM or GND file",
		Long: `Read the texture table of an RSM model or GND ground file and write a
new ASS file with one slot per texture: <prefix>0, <prefix>1, ...
Texture names are placed under --dir, with backslashes converted.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, target := args[0], args[1]
			if _, err := os.Stat(target); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", target)
			}

			list, err := formats.ReadTexturesFile(source)
			if err != nil {
				return err
			}
			a.log.Debug("texture table read",
				zap.String("format", list.Format),
				zap.Stringer("version", list.Version),
				zap.Int("textures", len(list.Textures)),
			)

			s, err := newSession(a.cfg)
			if err != nil {
				return err
			}
			s.setPath(target)
			for i, name := range list.Textures {
				texturePath := ""
				if name != "" {
					texturePath = path.Join(dir, encoding.NormalizeTexturePath(name))
				}
				if _, err := s.model.InsertRow(fmt.Sprintf("%s%d", prefix, i), texturePath); err != nil {
					return fmt.Errorf("texture %d: %w", i, err)
				}
			}
			if err := s.save(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s %s, %d slots)\n",
				styleSuccess.Render("Imported:"), target, list.Format, list.Version, s.model.RowCount())
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "texture", "Slot name prefix")
	cmd.Flags().StringVar(&dir, "dir", "texture", "Directory prepended to texture names")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}
