// Provides exit code functionality
//
// Each error category of the gateway maps onto its own process exit code,
// so scripts driving the CLI can tell a bad profile from an unreachable
// gateway or a model that answered with text instead of an image.
package app

import (
	"github.com/chriscorrea/nodellm/internal/llm/common"
)

// exit codes per error category
const (
	ExitOK                 = 0
	ExitError              = 1
	ExitInvalidConfig      = 2
	ExitTransport          = 3
	ExitHTTP               = 4
	ExitMediaDecode        = 5
	ExitUnexpectedModality = 6
)

var exitCodes = map[string]int{
	common.CategoryOK:                 ExitOK,
	common.CategoryInvalidConfig:      ExitInvalidConfig,
	common.CategoryTransport:          ExitTransport,
	common.CategoryTimeout:            ExitTransport,
	common.CategoryHTTP:               ExitHTTP,
	common.CategoryProvider:           ExitHTTP,
	common.CategoryDecode:             ExitMediaDecode,
	common.CategoryUnexpectedModality: ExitUnexpectedModality,
}

// ExitCode returns the process exit code for err
func ExitCode(err error) int {
	if code, ok := exitCodes[common.Categorize(err)]; ok {
		return code
	}
	return ExitError
}
