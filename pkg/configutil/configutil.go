// Package configutil reads json5 config files with an optional local
// override layer.
package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// LocalPath returns the override file that sits next to name, for
// "conf/edarchive.json5" that is "conf/edarchive.local.json5".
func LocalPath(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

// readLayer decodes a single file into out, found reports whether the file
// existed at all.
func readLayer[T any](path string, out *T) (found bool, err error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(contents) == 0 {
		return true, nil
	}
	err = json5.Unmarshal(contents, out)
	if err != nil {
		return true, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// ReadConfig reads `name` and then merges `<name>.local.<ext>` over it.
// It returns os.ErrNotExist only when neither file exists.
func ReadConfig[T any](name string) (T, error) {
	var out T
	foundBase, err := readLayer(name, &out)
	if err != nil {
		return out, err
	}

	var override T
	localPath := LocalPath(name)
	foundLocal, err := readLayer(localPath, &override)
	if err != nil {
		return out, err
	}
	if foundLocal {
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Info("merging config with local overrides", "local", localPath)
	}

	if !foundBase && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// MergeDefaults overlays every non-empty field of `loaded` onto `defaults`.
func MergeDefaults[T any](defaults T, loaded T) (T, error) {
	err := mergo.Merge(&defaults, loaded, mergo.WithOverride)
	return defaults, err
}
