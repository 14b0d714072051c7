//go:build !windows

package scan

// ps with a bare comm column, one process name per line.
const listCommand = "ps"

var listArgs = []string{"-A", "-o", "comm="}

var parseNames = parseCommNames
