package printer

import "github.com/slok/runx/internal/model"

// Printer knows how to print run history information in different formats.
type Printer interface {
	PrintRunList(runs []model.Run) error
	PrintRun(run model.Run) error
	PrintMessage(msg string) error
}
