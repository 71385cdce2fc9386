package printer

import "fmt"

// FormatBytes returns a human-readable byte size string, like "512 B",
// "1.5 KB" or "10.0 MB".
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		return "0 B"
	}

	const kb = 1024

	units := []string{"KB", "MB", "GB", "TB"}
	value := float64(bytes)
	unit := "B"
	for _, u := range units {
		if value < kb {
			break
		}
		value /= kb
		unit = u
	}

	if unit == "B" {
		return fmt.Sprintf("%d B", bytes)
	}
	return fmt.Sprintf("%.1f %s", value, unit)
}
