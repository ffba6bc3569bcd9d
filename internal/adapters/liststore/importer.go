package liststore

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
)

const (
	importBatch     = 1000
	maxImportLine   = 1 << 20
	initialLineSize = 64 * 1024
)

// ImportFile pushes every line of the file at path to list in file order,
// with trailing whitespace removed. It returns the number of items pushed.
func ImportFile(ctx context.Context, store Store, path, list string) (int, error) {
	if err := ValidateListName(list); err != nil {
		return 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, initialLineSize), maxImportLine)

	total := 0
	batch := make([][]byte, 0, importBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := store.Push(ctx, list, batch); err != nil {
			return err
		}
		total += len(batch)
		batch = make([][]byte, 0, importBatch)
		return nil
	}

	for sc.Scan() {
		batch = append(batch, bytes.Clone(bytes.TrimRight(sc.Bytes(), " \t\r\n\v\f")))
		if len(batch) == importBatch {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return total, fmt.Errorf("read %s: %w", path, err)
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}
