package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
)

// inputFlags are shared by commands that take a narrative.
type inputFlags struct {
	file string
}

// readNarrative takes the narrative from args, then --file, then stdin.
func readNarrative(fs afero.Fs, flags *inputFlags, args []string, stdin io.Reader, limit int64) (string, error) {
	if len(args) > 0 {
		if flags.file != "" {
			return "", fmt.Errorf("pass the narrative as arguments or --file, not both")
		}
		return checkLength(strings.Join(args, " "), limit)
	}

	if flags.file != "" {
		f, err := fs.Open(flags.file)
		if err != nil {
			return "", fmt.Errorf("failed to open narrative file: %w", err)
		}
		defer f.Close()
		return readLimited(f, limit)
	}

	if stdin == nil {
		return "", fmt.Errorf("no narrative given")
	}
	return readLimited(stdin, limit)
}

func readLimited(r io.Reader, limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("failed to read narrative: %w", err)
	}
	return checkLength(string(data), limit)
}

func checkLength(s string, limit int64) (string, error) {
	if int64(len(s)) > limit {
		return "", fmt.Errorf("narrative exceeds %d bytes", limit)
	}
	return s, nil
}
