package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
)

const maxTitleRunes = 100

// SafeTitle keeps the letters, digits, spaces, dashes and underscores of a
// title, cut to 100 runes.
func SafeTitle(title string) string {
	var b strings.Builder
	for _, c := range title {
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == ' ' || c == '-' || c == '_' {
			b.WriteRune(c)
		}
	}
	safe := []rune(strings.TrimRight(b.String(), " "))
	if len(safe) > maxTitleRunes {
		safe = safe[:maxTitleRunes]
	}
	return string(safe)
}

// FolderName is the name a new thread folder gets: `<id>_<safe title>` with
// spaces turned into underscores.
func FolderName(id int64, title string) string {
	safe := strings.ReplaceAll(SafeTitle(title), " ", "_")
	if safe == "" {
		return strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("%d_%s", id, safe)
}

// FindThreadFolder returns the existing folder for a thread id under root,
// that is a directory named `<id>` or starting with `<id>_`.
func FindThreadFolder(root string, id int64) (string, bool, error) {
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	idStr := strconv.FormatInt(id, 10)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == idStr || strings.HasPrefix(name, idStr+"_") {
			return filepath.Join(root, name), true, nil
		}
	}
	return "", false, nil
}

// ThreadFolder returns the folder a thread is archived in, creating it when
// needed. A thread id always maps to the same folder, even when its title has
// changed since the folder was created.
func ThreadFolder(root string, id int64, title string) (string, error) {
	existing, ok, err := FindThreadFolder(root, id)
	if err != nil {
		return "", err
	}
	if ok {
		return existing, nil
	}

	folder := filepath.Join(root, FolderName(id, title))
	err = os.MkdirAll(folder, 0755)
	if err != nil {
		return "", err
	}
	return folder, nil
}
