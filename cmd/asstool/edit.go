package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Faultbox/asstex/pkg/texmodel"
)

func (a *app) showCmd() *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:     "show <file>",
		Aliases: []string{"ls"},
		Short:   "Print the slot table",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(args[0])
			if err != nil {
				return err
			}
			if plain {
				renderPlain(cmd.OutOrStdout(), s.model)
			} else {
				renderTable(cmd.OutOrStdout(), s.model)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Print slot=path records instead of a table")
	return cmd
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <file> <slot>",
		Short: "Print the texture path assigned to a slot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(args[0])
			if err != nil {
				return err
			}
			row, err := s.row(args[1])
			if err != nil {
				return err
			}
			path, err := s.model.CellValue(row, texmodel.ColumnPath)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func (a *app) setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <file> <slot> <texture-path>",
		Short: "Assign a texture path to a slot and save",
		Long:  `Assign a texture path to an existing slot. Pass "" to unassign it.`,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(args[0])
			if err != nil {
				return err
			}
			if err := s.setFile(args[1], args[2]); err != nil {
				return err
			}
			return a.saveIfDirty(cmd, s)
		},
	}
}

func (a *app) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <file> <slot> [texture-path]",
		Short: "Append a new slot and save",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(args[0])
			if err != nil {
				return err
			}
			texturePath := ""
			if len(args) == 3 {
				texturePath = args[2]
			}
			if _, err := s.model.InsertRow(args[1], texturePath); err != nil {
				return err
			}
			return a.saveIfDirty(cmd, s)
		},
	}
}

func (a *app) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <file> <slot>",
		Aliases: []string{"remove"},
		Short:   "Remove a slot and save",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(args[0])
			if err != nil {
				return err
			}
			row, err := s.row(args[1])
			if err != nil {
				return err
			}
			if err := s.model.RemoveRow(row); err != nil {
				return err
			}
			return a.saveIfDirty(cmd, s)
		},
	}
}

func (a *app) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <file> <slot> <new-slot>",
		Short: "Rename a slot in place and save",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(args[0])
			if err != nil {
				return err
			}
			if err := s.doc.RenameSlot(args[1], args[2]); err != nil {
				return err
			}
			return a.saveIfDirty(cmd, s)
		},
	}
}

func (a *app) newCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "new <file> [slot=texture-path...]",
		Short: "Create a new ASS file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]
			if _, err := os.Stat(target); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", target)
			}

			s, err := newSession(a.cfg)
			if err != nil {
				return err
			}
			s.setPath(target)
			for _, rec := range args[1:] {
				slot, texturePath, _ := strings.Cut(rec, "=")
				if _, err := s.model.InsertRow(strings.TrimSpace(slot), strings.TrimSpace(texturePath)); err != nil {
					return err
				}
			}
			if err := s.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d slots)\n", styleSuccess.Render("Created:"), target, s.model.RowCount())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}

func (a *app) saveAsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "saveas <file> <dest>",
		Short: "Write a copy of the file to a new location",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(args[0])
			if err != nil {
				return err
			}
			if err := s.saveAs(args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", styleSuccess.Render("Saved:"), args[1])
			return nil
		},
	}
}

// errNotCanonical is returned by fmt --check.
var errNotCanonical = errors.New("file is not in canonical form")

func (a *app) fmtCmd() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Rewrite a file in canonical form",
		Long: `Rewrite a file in canonical form: one "slot=path" record per line,
fields trimmed, blank lines dropped, LF line endings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			s, err := a.openSession(args[0])
			if err != nil {
				return err
			}
			canonical, err := s.doc.Bytes()
			if err != nil {
				return err
			}
			if bytes.Equal(raw, canonical) {
				return nil
			}
			if check {
				fmt.Fprintln(cmd.OutOrStdout(), args[0])
				return errNotCanonical
			}
			return s.save()
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Report non-canonical files without rewriting them")
	return cmd
}

func (a *app) openSession(path string) (*session, error) {
	s, err := newSession(a.cfg)
	if err != nil {
		return nil, err
	}
	if err := s.open(path); err != nil {
		return nil, err
	}
	return s, nil
}

// saveIfDirty persists the edit made by a command. Unchanged documents are
// not rewritten.
func (a *app) saveIfDirty(cmd *cobra.Command, s *session) error {
	if s.model.State() != texmodel.StateDirty {
		fmt.Fprintln(cmd.OutOrStdout(), styleMuted.Render("No changes."))
		return nil
	}
	return s.save()
}
