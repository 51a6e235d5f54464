// Package catalog fetches a profile's track and album listing.
//
// A Source performs the actual fetch. A Worker runs a Source in a goroutine
// and reports back over a channel:
//
//	events := catalog.NewWorker(source).Start(ctx, creds)
//	for ev := range events {
//	    switch ev := ev.(type) {
//	    case catalog.ProgressEvent:
//	        fmt.Println(ev.Message)
//	    case *catalog.Challenge:
//	        ev.Answer(readCode(ev.Message), true)
//	    case catalog.DoneEvent:
//	        // ev.Catalog or ev.Err
//	    }
//	}
//
// Two sources are provided. HTTPSource speaks a small JSON protocol over
// HTTP with basic auth, a session cookie and a two-factor retry. FileSource
// reads the same JSON document from disk. NewSource picks one by the scheme
// of the profile link.
package catalog
