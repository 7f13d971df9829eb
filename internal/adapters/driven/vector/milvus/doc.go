// Package milvus provides a driven.VectorIndex backed by a Milvus server.
//
// Each rebuild writes a fresh collection named docqa_<ulid>. Once the new
// collection is flushed, indexed and loaded, a pointer file under the data
// directory is switched to it and the previous collection is dropped. A
// failed rebuild drops only the partial collection, so searches keep
// hitting the previous one.
package milvus
