package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/asstex/pkg/encoding"
	"github.com/Faultbox/asstex/pkg/grf"
	"github.com/Faultbox/asstex/pkg/texmodel"
)

var errMissingTextures = errors.New("missing textures")

// textureResolver locates texture files under directory roots and inside
// GRF archives. Roots ending in .grf are read as archives.
type textureResolver struct {
	dirs     []string
	archives []*grf.Index
}

func newTextureResolver(roots []string, log *zap.Logger) (*textureResolver, error) {
	r := &textureResolver{}
	for _, root := range roots {
		if !strings.EqualFold(filepath.Ext(root), ".grf") {
			r.dirs = append(r.dirs, root)
			continue
		}
		idx, err := grf.Open(root)
		if err != nil {
			return nil, err
		}
		log.Debug("archive indexed", zap.String("archive", root), zap.Int("files", idx.Len()))
		r.archives = append(r.archives, idx)
	}
	return r, nil
}

// resolve finds texturePath. Absolute paths are checked as-is; relative
// ones are tried under each directory root, then in each archive.
func (r *textureResolver) resolve(texturePath string) (string, bool) {
	p := filepath.FromSlash(encoding.NormalizeTexturePath(texturePath))
	if filepath.IsAbs(p) {
		info, err := os.Stat(p)
		return p, err == nil && !info.IsDir()
	}
	for _, dir := range r.dirs {
		candidate := filepath.Join(dir, p)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	for _, idx := range r.archives {
		if idx.Contains(texturePath) {
			return idx.Path + ":" + texturePath, true
		}
	}
	return "", false
}

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Verify that every assigned texture exists",
		Long: `Resolve every assigned texture path against the configured texture
roots (--texture-root, textures.roots) and report the ones not found.
A root ending in .grf is searched as a GRF archive.
Unassigned slots are listed but not counted as missing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(args[0])
			if err != nil {
				return err
			}
			resolver, err := newTextureResolver(a.cfg.Textures.Roots, a.log)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			missing := 0
			for _, row := range s.model.Rows() {
				slot, texturePath := row[texmodel.ColumnSlot], row[texmodel.ColumnPath]
				if texturePath == "" {
					fmt.Fprintf(out, "%s %s\n", styleMuted.Render("skip"), slot)
					continue
				}
				resolved, ok := resolver.resolve(texturePath)
				if !ok {
					missing++
					fmt.Fprintf(out, "%s %s=%s\n", styleWarning.Render("MISSING"), slot, texturePath)
					continue
				}
				a.log.Debug("texture resolved", zap.String("slot", slot), zap.String("file", resolved))
				fmt.Fprintf(out, "%s %s=%s\n", styleSuccess.Render("ok"), slot, texturePath)
			}

			if missing > 0 {
				return fmt.Errorf("%w: %d of %d slots", errMissingTextures, missing, s.model.RowCount())
			}
			return nil
		},
	}
}
