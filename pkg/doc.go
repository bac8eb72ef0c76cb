// Package pkg provides the libraries behind b4wexport.
//
// # Overview
//
// b4wexport walks a scene graph and writes the document a WebGL runtime
// loads: one JSON file with a collection per data-block kind, a binary
// sidecar holding vertex and animation buffers, and the packed media the
// scene carries. The pkg directory is organized as follows:
//
//  1. [scene] - The input graph: data blocks, references and node trees
//  2. [export] - The traversal that turns blocks into document records
//  3. [document] - Record encoding and final document assembly
//  4. [blob] - Typed buffers and the sidecar format
//  5. [pipeline] - Orchestration (load → export → assemble → write)
//
// # Architecture
//
// The typical data flow through an export:
//
//	scene file (YAML)
//	         ↓
//	    [io] package (decode and resolve references)
//	         ↓
//	    [export] package (walk scenes, cook geometry, record messages)
//	         ↓
//	    [document] package (assemble collections and header)
//	         ↓
//	    document.json + document.bin + packed media
//
// # Quick Start
//
//	runner, _ := pipeline.NewRunner(nil, nil, 0, logger)
//	defer runner.Close()
//
//	result, err := runner.Execute(ctx, pipeline.Options{Input: "level.yaml"})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Written.JSON)
//
// # Main Packages
//
// ## Export
//
// [export] - One export run over a resolved graph. Problems local to one
// block become messages; structural problems abort with a coded error.
//
// [nodetree] - Node tree fragments, pruning of nodes that feed no output and
// Graphviz drawing.
//
// [geometry] - Mesh cooking into submeshes, with a cache-backed decorator.
//
// [identity] - Stable record uuids derived from block names and libraries.
//
// [media] - Packed image and sound extraction under content-hash names.
//
// ## Infrastructure
//
// [cache] - File, Redis and no-op caches for cooked geometry.
//
// [errors] - Coded errors and input validation.
//
// [messages] - The warning and error sink recorded in documents.
//
// [observability] - Pipeline hooks for metrics and tracing.
//
// [buildinfo] - Version information injected at build time.
package pkg
