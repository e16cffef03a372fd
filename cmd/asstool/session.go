package main

import (
	"go.uber.org/zap"

	"github.com/Faultbox/asstex/internal/config"
	"github.com/Faultbox/asstex/internal/logger"
	"github.com/Faultbox/asstex/pkg/assfile"
	"github.com/Faultbox/asstex/pkg/texmodel"
)

// session is the shell around one document and its table model. It issues
// the six document commands: open, set-path, set-file, save, save-as, close.
type session struct {
	doc   *assfile.File
	model *texmodel.Model
	log   *zap.Logger
}

func newSession(cfg *config.Config) (*session, error) {
	codec, err := cfg.Document.Codec()
	if err != nil {
		return nil, err
	}
	mode, err := cfg.Document.Mode()
	if err != nil {
		return nil, err
	}

	doc := assfile.New(
		assfile.WithLogger(logger.Named("assfile")),
		assfile.WithCodec(codec),
		assfile.WithMaxPathLength(cfg.Document.MaxPathLength),
		assfile.WithFileMode(mode),
		assfile.WithCreateDirs(cfg.Document.CreateDirs),
	)
	model := texmodel.New(doc, texmodel.WithLogger(logger.Named("texmodel")))

	return &session{doc: doc, model: model, log: logger.Named("session")}, nil
}

func (s *session) open(path string) error {
	if err := s.doc.Load(path); err != nil {
		return err
	}
	if s.model.State() == texmodel.StateUnbound {
		s.model.Bind(s.doc)
	}
	s.model.Refresh()
	s.log.Debug("opened", zap.String("path", path), zap.Int("rows", s.model.RowCount()))
	return nil
}

// setPath attaches the document to path, rebinding the model after a close.
func (s *session) setPath(path string) {
	s.doc.SetPath(path)
	if s.model.State() == texmodel.StateUnbound {
		s.model.Bind(s.doc)
	}
}

// setFile assigns a texture path to slot through the table model.
func (s *session) setFile(slot, texturePath string) error {
	row, err := s.row(slot)
	if err != nil {
		return err
	}
	return s.model.SetCellValue(row, texmodel.ColumnPath, texturePath)
}

func (s *session) save() error {
	if !s.doc.IsAttached() {
		return assfile.ErrNoPath
	}
	if err := s.doc.Save(); err != nil {
		return err
	}
	s.log.Info("saved", zap.String("path", s.doc.Path()), zap.Int("entries", s.doc.Len()))
	return nil
}

func (s *session) saveAs(path string) error {
	if err := s.doc.SaveAs(path); err != nil {
		return err
	}
	s.log.Info("saved as", zap.String("path", path), zap.Int("entries", s.doc.Len()))
	return nil
}

func (s *session) close() {
	if s.doc.IsDirty() {
		s.log.Warn("discarding unsaved changes", zap.String("path", s.doc.Path()))
	}
	s.doc.Close()
	s.model.Refresh()
	s.log.Debug("closed", zap.Stringer("model", s.model.State()))
}

// row returns the model row holding slot.
func (s *session) row(slot string) (int, error) {
	for i := 0; i < s.model.RowCount(); i++ {
		v, err := s.model.CellValue(i, texmodel.ColumnSlot)
		if err != nil {
			return -1, err
		}
		if v == slot {
			return i, nil
		}
	}
	return -1, &assfile.SlotNotFoundError{Slot: slot}
}
