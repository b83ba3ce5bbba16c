package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteFileAtomic 先写入同目录下的临时文件，成功后再重命名为目标路径
// 任何失败都会删除临时文件，目标路径不会留下半成品
func WriteFileAtomic(path string, fn func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return WriteError(path, fmt.Errorf("create temp file: %w", err))
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err = fn(tmp); err != nil {
		return WriteError(path, err)
	}
	if err = tmp.Sync(); err != nil {
		return WriteError(path, err)
	}
	if err = tmp.Close(); err != nil {
		return WriteError(path, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return WriteError(path, fmt.Errorf("rename temp file: %w", err))
	}
	return nil
}
