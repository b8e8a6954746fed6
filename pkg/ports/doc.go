/*
Package ports defines the driven ports (interfaces) of the mnemo generator.

These interfaces decouple the constrained-chain engine from corpus sources, model caches
and coordination backends, so that each can be swapped without touching the core.

# Key Interfaces

  - Tokenizer: Turns raw corpus text into token sequences for a given markov order.
  - ModelStore: Persists trained base models keyed by corpus name and order.
  - DistributedLocker: Serializes training of the same corpus across replicas.
*/
package ports
