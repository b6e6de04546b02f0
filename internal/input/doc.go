// Package input defines how editor logic receives keys.
//
// Code that reacts to keys depends on KeySource and KeySink and on the
// terminal-agnostic types in package key. It never sees a terminal
// library. A terminal is attached only when a caller builds a
// termkey.Source over a backend; ChannelSource serves tests and replay.
//
// # Usage
//
//	src := termkey.NewSource(term)
//	defer src.Close()
//
//	for {
//	    ev, err := src.ReadKey(ctx)
//	    if err != nil {
//	        return err
//	    }
//	    handle(ev)
//	}
//
// Metrics counts what a source delivered and how long keys waited.
package input
