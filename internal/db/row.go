package db

import "dbjson/internal/errs"

// ScanRows reads all rows from the result set and returns them as a slice
// of maps, where each key is the column name and each value is the Go-native
// representation of the DB value.
//
// The returned slice is always non-nil (empty slice on zero rows).
// ScanRows always closes rows — callers do not need to call Close().
func ScanRows(rows Rows) ([]map[string]any, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errs.Wrap(errs.KindDriverError, "read column names", err)
	}

	result := make([]map[string]any, 0)

	for rows.Next() {
		dest := make([]any, len(columns))
		destPtrs := make([]any, len(columns))
		for i := range dest {
			destPtrs[i] = &dest[i]
		}

		if err := rows.Scan(destPtrs...); err != nil {
			return nil, errs.Wrap(errs.KindDriverError, "scan row", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = dest[i]
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.KindDriverError, "row iteration", err)
	}

	return result, nil
}

// ScanRow reads a single row into a map keyed by column name.
func ScanRow(row Row, columns []string) (map[string]any, error) {
	dest := make([]any, len(columns))
	destPtrs := make([]any, len(columns))
	for i := range dest {
		destPtrs[i] = &dest[i]
	}

	if err := row.Scan(destPtrs...); err != nil {
		return nil, errs.Wrap(errs.KindDriverError, "scan single row", err)
	}

	result := make(map[string]any, len(columns))
	for i, col := range columns {
		result[col] = dest[i]
	}
	return result, nil
}
