/*
Package domain contains the core types of the mnemo generator.

It defines the vocabulary shared by the engine, the adapters and the transports.
The package is kept pure and free of I/O so that every other layer can depend on it.

# Key Entities

  - Token: One or more corpus words acting as a single Markov state.
  - Constraint: The per-position prefix (or wildcard) pattern a sentence must satisfy.
  - TransitionModel: A weighted adjacency map from source token to successors.
  - BaseModel: The unconstrained chain learned from a corpus; the cache boundary.
  - RemovalCause: Why a token was pruned from a layer (constraint or arc-consistency).
*/
package domain
