package tables

// Normalize pads every row at the end with empty cells so all rows have the
// width of the widest one. The input is left untouched.
func Normalize(rows [][]string) [][]string {
	maxCols := 0
	for _, row := range rows {
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}

	out := make([][]string, len(rows))
	for i, row := range rows {
		padded := make([]string, maxCols)
		copy(padded, row)
		out[i] = padded
	}
	return out
}
