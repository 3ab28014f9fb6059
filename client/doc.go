// Package client talks to a running hub over HTTP: it publishes messages
// and consumes the event stream.
//
//	c, err := client.New(client.Config{URL: "http://localhost:8080"})
//	stream, err := c.Subscribe(ctx)
//	defer stream.Close()
//	for {
//	    ev, err := stream.Next()
//	    ...
//	}
package client
