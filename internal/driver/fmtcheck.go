package driver

import (
	"moltree/internal/format"
	"moltree/internal/source"
)

// RunFmtCheck parses the file, prints it canonically, re-parses the output
// and compares the two trees without spans. It returns (ok, report string);
// ok means the file parsed cleanly and formatting kept its structure.
func RunFmtCheck(sf *source.File, opt format.Options, maxDiagnostics int) (success bool, msg string) {
	if sf == nil {
		return false, "fmt-check: no file"
	}
	return format.CheckRoundTrip(sf, opt, maxDiagnostics)
}
