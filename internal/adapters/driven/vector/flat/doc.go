// Package flat provides an exact, in-memory vector index.
//
// Every query is compared against every stored vector by Euclidean
// distance, the same contract as a FAISS IndexFlatL2. Vectors keep their
// insertion order and carry the id of the document that produced them, so a
// hit can be attributed without relying on its ordinal position.
//
// The index is not persisted. It is rebuilt from the document store at
// startup and after every deletion.
package flat
