package pricing

import (
	"fmt"
	"os"
	"strings"
)

// SourceFromEnv returns the price-sheet CSV text. A file path takes
// precedence (easier to mount on the host); falling back to inline env
// content keeps single-container deploys working without a volume.
func SourceFromEnv() (string, error) {
	if path := strings.TrimSpace(os.Getenv("GTQ_PRICES_CSV_PATH")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("cannot read price sheet %s: %w", path, err)
		}
		return string(data), nil
	}

	if text := os.Getenv("GTQ_PRICES_CSV"); strings.TrimSpace(text) != "" {
		return text, nil
	}

	return "", fmt.Errorf("missing price sheet: set GTQ_PRICES_CSV_PATH or GTQ_PRICES_CSV")
}
