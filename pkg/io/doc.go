// Package io reads scene files and exported documents and writes export
// artifacts.
//
// # Scene files
//
// A scene file is YAML (JSON works too, being a subset) with one list per
// block kind. Every block has a name; blocks refer to each other by name,
// or by a {name, library} mapping for blocks linked from a library:
//
//	blend_path: levels/intro.blend
//	scenes:
//	  - name: Scene
//	    objects: [Cube]
//	    camera: Camera
//	    world: World
//	objects:
//	  - name: Cube
//	    type: MESH
//	    data: CubeMesh
//	    material_slots: [Red]
//	    props:
//	      location: [0, 0, 1]
//	meshes:
//	  - name: CubeMesh
//	    polygons: 12
//	    geometry:
//	      - positions: [...]
//	        indices: [...]
//
// Recognized lists: scenes, objects, meshes, materials, textures, images,
// sounds, cameras, lamps, speakers, armatures, curves, particles, groups,
// worlds, node_groups and actions. Props mappings are copied verbatim into
// the exported records and keep their key order.
//
// Use [ImportScene] to load a file or [ReadScene] to decode from any
// io.Reader. Both resolve every reference; a name that matches no block
// fails with an INVALID_INPUT error naming the block and field.
//
// # Artifacts
//
// [WriteArtifacts] writes the document, the binary sidecar next to it and
// any extracted packed media. Output that access rules forbid is a
// PERMISSION error; any other write failure is a WRITE error.
//
// [ImportDocument] reads an exported document back for inspection: its
// header fields, the binaries table, the recorded messages and the record
// count of every collection.
package io
