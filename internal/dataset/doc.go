// Package dataset provides the in-memory table model and the Excel
// workbook loader behind the dashboard.
//
// A Table is an immutable column-ordered collection of uniformly shaped
// rows of typed scalar cells (number, string, timestamp, null). Columns
// carry a dtype classification used to gate features: numeric columns can
// be aggregated and plotted, datetime columns can be range-filtered.
//
// The Loader reads workbooks through excelize and memoizes results by
// path for the process lifetime; a failed load yields an empty Table plus
// the error, so downstream views degrade instead of crashing.
//
// Example usage:
//
//	loader := dataset.NewLoader(logger)
//	table, err := loader.Load(ctx, "data/merged_output_stocks.xlsx")
//	if err != nil {
//	    // table is empty but usable; surface err to the user
//	}
//	sectors := table.DistinctStrings("sector")
package dataset
