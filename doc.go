/*
Package glyphcat extracts a deterministic set of visual features from transparent PNG glyphs
(palette, edge density, entropy, texture, contrast, shape, dominant edge angle and a heuristic mood)
and publishes the resulting records as an append-only catalog inside a git backed collection.

The package provides a command line interface. To check the supported commands type:

	$ glyphcat --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"context"
		"fmt"

		"github.com/esimov/glyphcat"
		"github.com/esimov/glyphcat/store"
	)

	func main() {
		ctx := context.Background()
		c, err := store.Open(ctx, store.Options{Owner: "esimov", Name: "glyphs"})
		if err != nil {
			panic(err)
		}
		defer c.Close()

		pub := &glyphcat.Publisher{Collection: c}
		if _, err := pub.Prepare(ctx); err != nil {
			panic(err)
		}

		p := &glyphcat.Processor{Location: c.Location()}
		rep, err := p.Execute(ctx, glyphcat.Batch{Files: files})
		if err != nil {
			panic(err)
		}
		out, err := pub.Publish(ctx, rep)
		if err != nil {
			fmt.Printf("Error publishing the glyphs: %s", err.Error())
		}
		fmt.Print(out.Message())
	}
*/
package glyphcat
