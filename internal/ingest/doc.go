// Package ingest converts CSV text into typed rows.
//
// Parsing is quote-aware: a field wrapped in double quotes may contain commas,
// line breaks and doubled quotes. The first non-empty record is the header.
// Each data cell is trimmed and inferred as a number, a boolean, an empty
// value, or a string:
//
//	res := ingest.Parse("a,b\n1,2\n3,x\n")
//	if !res.OK() {
//	    return res.Err()
//	}
//	for _, row := range res.Rows {
//	    v, _ := row.Get("b")
//	    fmt.Println(v.Kind, v)
//	}
//
// A parse either succeeds completely or fails with a *ParseFailure that
// carries the line and column of the problem. Nothing is returned partially.
package ingest
