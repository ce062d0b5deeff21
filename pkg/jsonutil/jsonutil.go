package jsonutil

import (
	"bytes"
	"encoding/json"
	"os"
)

// Marshal encodes v with two space indentation and without escaping html
// characters, thread bodies are markup and stay readable that way.
func Marshal(v any) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	err := enc.Encode(v)
	if err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func WriteFile(path string, v any) error {
	out, err := Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0644)
}

// WriteRaw writes an already encoded document, indented.
func WriteRaw(path string, raw []byte) error {
	buf := bytes.NewBuffer(nil)
	err := json.Indent(buf, raw, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
