// Package core turns a Source into a grid Table and tracks grid views.
//
// It has no transport dependencies and is shared by the web server and the
// CLI.
//
// # Sources
//
// A [Source] is one of three inputs, resolved in this order:
//
//   - Rows: pre-parsed rows, used as given
//   - RawCSV: inline text, parsed
//   - URL: fetched (optionally behind a proxy prefix), then parsed
//
// # Loading
//
// [Service.Load] runs fetch then parse, strictly in that order. Fetched
// documents are cached by (url, proxy prefix) and parse results by a SHA-256
// of the text. Concurrent loads of the same URL share one request. Failed
// loads are never cached.
//
//	svc := core.NewService(fetch.New(fetch.Options{}), core.Options{})
//	table, err := svc.Load(ctx, core.Source{URL: "https://example.com/data.csv"})
//
// # Views
//
// [Service.Start] loads in the background and returns a view id. A view's
// [State] is derived from its snapshot: pending until a Table or an error is
// recorded. Settled views are forgotten after the configured TTL.
//
// # Errors
//
// [MapError] converts fetch, parse and view errors to a [UserMessage] with a
// support code (NET, CSV, SRC, VIEW, RATE, ERR000).
package core
