package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/runx/internal/model"
)

func TestExitCode(t *testing.T) {
	tests := map[string]struct {
		status  model.ExitStatus
		expCode int
	}{
		"A zero exit should be mirrored": {
			status:  model.ExitStatus{Code: 0},
			expCode: 0,
		},

		"A non-zero exit should be mirrored": {
			status:  model.ExitStatus{Code: 42},
			expCode: 42,
		},

		"A signal terminated child has no exit code and should report a plain failure": {
			status:  model.ExitStatus{Code: -1, Signaled: true, Signal: "terminated"},
			expCode: 1,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expCode, exitCode(test.status))
		})
	}
}
