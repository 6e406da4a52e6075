package fileutil

import (
	"bytes"
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// MarshalJSON renders v as indented JSON without HTML escaping so non-ASCII
// and markup in word data stay readable on disk.
func MarshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSONAtomic encodes v and atomically replaces path with the result.
func WriteJSONAtomic(path string, v any) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return WriteFileAtomic(path, data, 0o644)
}

// ReadJSON decodes path into v. It reports false without error when the file
// is missing or holds only whitespace.
func ReadJSON(path string, v any) (bool, error) {
	data, err := ReadFileIfExists(path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

// BackupFile copies path to path+".bak" when path exists.
func BackupFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	backup := path + ".bak"
	if err := CopyFileMode(path, backup, info.Mode().Perm()); err != nil {
		return "", fmt.Errorf("backup %s: %w", path, err)
	}
	return backup, nil
}
