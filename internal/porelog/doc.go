// Package porelog turns pore log JSON files into a table view.
//
// The pipeline has three stateless steps:
//
//  1. [Load] reads a file, decodes its text and parses JSON into a [Document],
//     keeping object key order. It fails with a [*LoadError] of kind
//     MissingFile or InvalidJSON.
//  2. [Transform] splits the document into metadata (every top-level field
//     except Data) and a table: an Index column followed by the union of all
//     record keys in first-seen order, and one row per record with the null
//     marker (nil) where a record lacks a column.
//  3. [ToCSV] serializes the table. [CSVFilename] derives the export name.
//
// A pore log file looks like:
//
//	{
//	  "HasData": true,
//	  "SerialNumber": 12345,
//	  "Data": [
//	    {"DateTime": "2025-01-01T00:00:00", "Voltage": 50},
//	    {"DateTime": "2025-01-01T00:00:01", "Voltage": 50, "IsDataValid": true}
//	  ]
//	}
//
// The table is only built when HasData is the literal boolean true and Data
// is a non-empty array. Transform and ToCSV never fail.
package porelog
