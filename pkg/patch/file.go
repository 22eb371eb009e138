package patch

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/rytunyn/timeline/pkg/errors"
	"github.com/rytunyn/timeline/pkg/render/timeline/sink"
)

// FileResult describes the outcome of PatchFile.
type FileResult struct {
	Changed bool // the patched document differs from the file
	Size    int  // size of the patched document in bytes
}

// PatchFile patches the page at path in place. The file is only replaced
// after the new content has been computed, and not at all when it would
// not change. With dryRun set the file is never written.
func PatchFile(path string, f sink.Fragments, opts Options, dryRun bool) (FileResult, error) {
	orig, err := ReadDocument(path)
	if err != nil {
		return FileResult{}, err
	}

	out, err := Patch(bytes.NewReader(orig), f, opts)
	if err != nil {
		return FileResult{}, err
	}
	res := FileResult{Changed: !bytes.Equal(out, orig), Size: len(out)}
	if !res.Changed || dryRun {
		return res, nil
	}
	if err := WriteFileAtomic(path, out); err != nil {
		return FileResult{}, err
	}
	return res, nil
}

// ReadDocument reads the page at path. A missing file yields an
// ErrCodeFileNotFound error.
func ReadDocument(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s not found", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", path)
	}
	return data, nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it over path, keeping the mode of an existing file.
func WriteFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0644)
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create temp file for %s", path)
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", name)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeInternal, err, "chmod %s", name)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "close %s", name)
	}
	if err := os.Rename(name, path); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "rename %s", name)
	}
	return nil
}
