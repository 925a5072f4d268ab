package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	idxcodec "github.com/reoring/idxcodec"
	"github.com/reoring/idxcodec/schemafile"
)

// readInput reads path, or the command's stdin when path is empty or "-".
// With asHex the content is hex text (whitespace ignored).
func (a *app) readInput(path string, asHex bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(a.in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	if !asHex {
		return data, nil
	}
	compact := bytes.Join(bytes.Fields(data), nil)
	out := make([]byte, hex.DecodedLen(len(compact)))
	if _, err := hex.Decode(out, compact); err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return out, nil
}

// writeOutput writes data to the configured output file or stdout.
func (a *app) writeOutput(data []byte) error {
	if a.cfg.Output != "" && a.cfg.Output != "-" {
		return os.WriteFile(a.cfg.Output, data, 0o644)
	}
	_, err := a.out.Write(data)
	return err
}

// loadCodec loads a schema file and builds its dynamic codec.
func (a *app) loadCodec(path string) (*schemafile.File, *idxcodec.DynamicCodec, error) {
	f, err := schemafile.Load(path)
	if err != nil {
		return nil, nil, err
	}
	c, err := f.Codec(a.options())
	if err != nil {
		return nil, nil, err
	}
	return f, c, nil
}
