package assfile

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Faultbox/asstex/pkg/encoding"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func loadedFile(t *testing.T, content string) (*File, string) {
	t.Helper()
	path := writeFile(t, t.TempDir(), "model.ass", content)
	f := New(WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, f.Load(path))
	return f, path
}

func TestNew_Empty(t *testing.T) {
	f := New()

	assert.Equal(t, 0, f.Len())
	assert.False(t, f.IsDirty())
	assert.False(t, f.IsAttached())
	assert.Equal(t, "", f.Path())
	assert.Equal(t, encoding.NameUTF8, f.Codec().Name())
}

func TestLoad(t *testing.T) {
	f, path := loadedFile(t, "albedo=tex/a.png\nnormal=tex/n.png\n")

	assert.Equal(t, path, f.Path())
	assert.True(t, f.IsAttached())
	assert.False(t, f.IsDirty())
	assert.Equal(t, []Entry{
		{Slot: "albedo", Path: "tex/a.png"},
		{Slot: "normal", Path: "tex/n.png"},
	}, f.Entries())

	e, ok := f.Entry(1)
	require.True(t, ok)
	assert.Equal(t, "normal", e.Slot)

	_, ok = f.Entry(2)
	assert.False(t, ok)
	_, ok = f.Entry(-1)
	assert.False(t, ok)
}

func TestLoad_DuplicateKeepsEmptyState(t *testing.T) {
	path := writeFile(t, t.TempDir(), "dup.ass", "albedo=a.png\nalbedo=b.png\n")

	f := New()
	err := f.Load(path)

	var de *DuplicateSlotError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "albedo", de.Slot)
	assert.Equal(t, 0, f.Len())
	assert.False(t, f.IsAttached())
	assert.False(t, f.IsDirty())
}

func TestLoad_FailureRetainsPreviousDocument(t *testing.T) {
	f, goodPath := loadedFile(t, "albedo=a.png\n")
	require.NoError(t, f.SetEntry("albedo", "edited.png"))

	badPath := writeFile(t, t.TempDir(), "bad.ass", "albedo=a.png\n=oops\n")
	err := f.Load(badPath)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Line)

	assert.Equal(t, goodPath, f.Path())
	assert.True(t, f.IsDirty())
	assert.Equal(t, []Entry{{Slot: "albedo", Path: "edited.png"}}, f.Entries())
}

func TestLoad_MissingFile(t *testing.T) {
	f := New()
	err := f.Load(filepath.Join(t.TempDir(), "missing.ass"))

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "read", ioErr.Op)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, f.IsAttached())
}

func TestLoad_PathLimit(t *testing.T) {
	path := writeFile(t, t.TempDir(), "long.ass", "albedo=0123456789\n")

	f := New(WithMaxPathLength(5))
	assert.ErrorIs(t, f.Load(path), ErrPathTooLong)

	f = New(WithMaxPathLength(0))
	assert.NoError(t, f.Load(path))
}

func TestSetEntry(t *testing.T) {
	f, _ := loadedFile(t, "albedo=a.png\nnormal=n.png\n")

	require.NoError(t, f.SetEntry("albedo", "new.png"))
	assert.True(t, f.IsDirty())
	assert.Equal(t, []Entry{
		{Slot: "albedo", Path: "new.png"},
		{Slot: "normal", Path: "n.png"},
	}, f.Entries())
}

func TestSetEntry_SameValueStaysClean(t *testing.T) {
	f, _ := loadedFile(t, "albedo=a.png\n")

	require.NoError(t, f.SetEntry("albedo", "a.png"))
	assert.False(t, f.IsDirty())
}

func TestSetEntry_Errors(t *testing.T) {
	f, _ := loadedFile(t, "albedo=a.png\n")

	err := f.SetEntry("missing", "x.png")
	assert.ErrorIs(t, err, ErrSlotNotFound)
	var nf *SlotNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "missing", nf.Slot)

	err = f.SetEntry("albedo", "bad\x00path")
	assert.ErrorIs(t, err, ErrRecordSep)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "albedo", ve.Slot)

	assert.False(t, f.IsDirty())
	e, _ := f.Entry(0)
	assert.Equal(t, "a.png", e.Path)
}

func TestSetEntry_UnencodablePathRejected(t *testing.T) {
	path := writeFile(t, t.TempDir(), "kr.ass", "albedo=a.bmp\n")
	f := New(WithCodec(encoding.EUCKR))
	require.NoError(t, f.Load(path))

	err := f.SetEntry("albedo", "tex/🙂.bmp")
	assert.ErrorIs(t, err, ErrInvalidPath)
	assert.False(t, f.IsDirty())
}

func TestSaveAndReload(t *testing.T) {
	f, path := loadedFile(t, "albedo=a.png\nnormal=n.png\n")
	require.NoError(t, f.SetEntry("albedo", "new.png"))

	require.NoError(t, f.Save())
	assert.False(t, f.IsDirty())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "albedo=new.png\nnormal=n.png\n", string(data))

	g := New()
	require.NoError(t, g.Load(path))
	assert.Equal(t, f.Entries(), g.Entries())
	assert.False(t, g.IsDirty())
}

func TestSave_NoPath(t *testing.T) {
	dir := t.TempDir()
	f := New()
	f.Close()

	assert.ErrorIs(t, f.Save(), ErrNoPath)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	f, path := loadedFile(t, "albedo=a.png\n")
	require.NoError(t, f.SetEntry("albedo", "b.png"))
	require.NoError(t, f.Save())

	files, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "model.ass", files[0].Name())
}

func TestSave_PreservesMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}
	f, path := loadedFile(t, "albedo=a.png\n")
	require.NoError(t, os.Chmod(path, 0600))

	require.NoError(t, f.SetEntry("albedo", "b.png"))
	require.NoError(t, f.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestSave_MissingDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "dir", "out.ass")

	f := New()
	err := f.SaveAs(target)
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "write", ioErr.Op)

	f = New(WithCreateDirs(true))
	require.NoError(t, f.SaveAs(target))
	_, err = os.Stat(target)
	assert.NoError(t, err)
}

func TestSetPath_DoesNotMarkDirty(t *testing.T) {
	f := New()
	f.SetPath(filepath.Join(t.TempDir(), "new.ass"))

	assert.True(t, f.IsAttached())
	assert.False(t, f.IsDirty())

	_, err := f.AddEntry("albedo", "a.png")
	require.NoError(t, err)
	f.SetPath(filepath.Join(t.TempDir(), "other.ass"))
	assert.True(t, f.IsDirty())
}

func TestSaveAs(t *testing.T) {
	f, original := loadedFile(t, "albedo=a.png\n")
	require.NoError(t, f.SetEntry("albedo", "b.png"))

	target := filepath.Join(t.TempDir(), "copy.ass")
	require.NoError(t, f.SaveAs(target))

	assert.Equal(t, target, f.Path())
	assert.False(t, f.IsDirty())

	data, err := os.ReadFile(original)
	require.NoError(t, err)
	assert.Equal(t, "albedo=a.png\n", string(data))

	data, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "albedo=b.png\n", string(data))
}

func TestClose_Discards(t *testing.T) {
	f, path := loadedFile(t, "albedo=a.png\n")
	require.NoError(t, f.SetEntry("albedo", "b.png"))

	f.Close()
	assert.Equal(t, 0, f.Len())
	assert.False(t, f.IsDirty())
	assert.False(t, f.IsAttached())

	f.Close()
	assert.Equal(t, 0, f.Len())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "albedo=a.png\n", string(data))
}

func TestAddRemoveRename(t *testing.T) {
	f, _ := loadedFile(t, "albedo=a.png\n")

	i, err := f.AddEntry("normal", "n.png")
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	assert.True(t, f.IsDirty())

	_, err = f.AddEntry("normal", "x.png")
	assert.ErrorIs(t, err, ErrDuplicateSlot)
	_, err = f.AddEntry("bad slot", "")
	assert.ErrorIs(t, err, ErrInvalidSlot)

	require.NoError(t, f.RenameSlot("albedo", "diffuse"))
	assert.ErrorIs(t, f.RenameSlot("diffuse", "normal"), ErrDuplicateSlot)
	assert.ErrorIs(t, f.RenameSlot("albedo", "x"), ErrSlotNotFound)

	i, err = f.RemoveEntry("diffuse")
	require.NoError(t, err)
	assert.Equal(t, 0, i)
	_, err = f.RemoveEntry("diffuse")
	assert.ErrorIs(t, err, ErrSlotNotFound)

	assert.Equal(t, []Entry{{Slot: "normal", Path: "n.png"}}, f.Entries())

	e, idx, ok := f.Lookup("normal")
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, "n.png", e.Path)
}

func TestEntries_ReturnsCopy(t *testing.T) {
	f, _ := loadedFile(t, "albedo=a.png\n")

	entries := f.Entries()
	entries[0].Path = "mutated.png"

	e, _ := f.Entry(0)
	assert.Equal(t, "a.png", e.Path)
	assert.False(t, f.IsDirty())
}

func TestOnChange(t *testing.T) {
	f := New()

	var events []EventKind
	cancel := f.OnChange(func(ev Event) { events = append(events, ev.Kind) })

	path := writeFile(t, t.TempDir(), "a.ass", "albedo=a.png\n")
	require.NoError(t, f.Load(path))
	require.NoError(t, f.SetEntry("albedo", "b.png"))
	require.Error(t, f.SetEntry("albedo", "bad\npath"))
	require.NoError(t, f.Save())
	f.Close()

	cancel()
	f.Close()

	assert.Equal(t, []EventKind{EventLoaded, EventEdited, EventSaved, EventClosed}, events)
}

func TestOnChange_CancelDuringDelivery(t *testing.T) {
	f, _ := loadedFile(t, "albedo=a.png\n")

	counts := make([]int, 3)
	var cancelFirst func()
	cancelFirst = f.OnChange(func(Event) {
		counts[0]++
		cancelFirst()
	})
	f.OnChange(func(Event) { counts[1]++ })
	f.OnChange(func(Event) { counts[2]++ })

	require.NoError(t, f.SetEntry("albedo", "b.png"))
	assert.Equal(t, []int{1, 1, 1}, counts)

	require.NoError(t, f.SetEntry("albedo", "c.png"))
	assert.Equal(t, []int{1, 2, 2}, counts)
}

func TestEUCKR_LoadSave(t *testing.T) {
	encoded, err := encoding.EUCKR.Encode("wall=data/texture/유저인터페이스/wall.bmp\n")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "kr.ass")
	require.NoError(t, os.WriteFile(path, encoded, 0644))

	f := New(WithCodec(encoding.EUCKR))
	require.NoError(t, f.Load(path))

	e, _ := f.Entry(0)
	assert.Equal(t, "data/texture/유저인터페이스/wall.bmp", e.Path)

	require.NoError(t, f.SetEntry("wall", "data/texture/wall2.bmp"))
	require.NoError(t, f.Save())

	g := New(WithCodec(encoding.EUCKR))
	require.NoError(t, g.Load(path))
	assert.Equal(t, f.Entries(), g.Entries())
}
