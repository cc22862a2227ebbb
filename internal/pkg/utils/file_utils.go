package utils

import (
	"errors"
	"io/fs"
	"os"
)

// ReadOptionalFile reads filePath, reporting found=false instead of an error when the file does not exist.
func ReadOptionalFile(filePath string) (data []byte, found bool, err error) {
	if filePath == "" {
		return nil, false, nil
	}
	data, err = os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}
