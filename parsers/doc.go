// Package parsers turns uploaded student files into ordered rows of raw
// header -> cell text.
//
// Supported inputs:
//   - delimited text (.csv, .tsv, .txt), comma by default, ';' or tab when the
//     header line has no commas
//   - a JSON array of flat objects, or a single object (.json)
//   - newline-delimited JSON objects (.ndjson)
//   - the first worksheet of an Excel workbook (.xlsx)
//
// Files are read fully into memory. Every failure to produce at least one
// data row is reported as common.ErrContent.
//
// Example:
//
//	data, _ := os.ReadFile("students.csv")
//	records, format, err := parsers.Read(data, ".csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, record := range records {
//	    for _, header := range record.Headers {
//	        fmt.Println(format, header, record.Get(header))
//	    }
//	}
package parsers
