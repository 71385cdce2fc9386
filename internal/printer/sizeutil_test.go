package printer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/runx/internal/printer"
)

func TestFormatBytes(t *testing.T) {
	tests := map[string]struct {
		bytes int64
		exp   string
	}{
		"Zero bytes":      {bytes: 0, exp: "0 B"},
		"Negative bytes":  {bytes: -5, exp: "0 B"},
		"Under one KB":    {bytes: 512, exp: "512 B"},
		"Kilobytes":       {bytes: 1536, exp: "1.5 KB"},
		"Megabytes":       {bytes: 10 * 1024 * 1024, exp: "10.0 MB"},
		"Gigabytes":       {bytes: 3 * 1024 * 1024 * 1024, exp: "3.0 GB"},
		"Terabytes":       {bytes: 2 * 1024 * 1024 * 1024 * 1024, exp: "2.0 TB"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, printer.FormatBytes(test.bytes))
		})
	}
}
