package domain

// TabularResult is a parsed result set: ordered column names and rows of
// string values, one value per column.
//
// A result with no rows is the signal for "no data", which is what a failed
// or cancelled execution yields.
type TabularResult struct {
	Columns []string
	Rows    [][]string
}

// EmptyResult returns a result with no columns and no rows.
func EmptyResult() *TabularResult {
	return &TabularResult{Columns: []string{}, Rows: [][]string{}}
}

// RowCount returns the number of rows.
func (t *TabularResult) RowCount() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the result has no rows.
func (t *TabularResult) Empty() bool {
	return t.RowCount() == 0
}

// Record returns row i keyed by column name.
func (t *TabularResult) Record(i int) map[string]string {
	row := t.Rows[i]
	rec := make(map[string]string, len(t.Columns))
	for j, col := range t.Columns {
		if j < len(row) {
			rec[col] = row[j]
		}
	}
	return rec
}

// Records returns every row keyed by column name.
func (t *TabularResult) Records() []map[string]string {
	out := make([]map[string]string, t.RowCount())
	for i := range out {
		out[i] = t.Record(i)
	}
	return out
}
