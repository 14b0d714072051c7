//go:build windows

package scan

// tasklist in headerless CSV mode; the image name is the first column.
const listCommand = "tasklist"

var listArgs = []string{"/fo", "csv", "/nh"}

var parseNames = parseCSVNames
