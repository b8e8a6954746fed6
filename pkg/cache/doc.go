/*
Package cache implements load-or-train orchestration for base models.

It keeps trained models resident in the process, falls back to a ModelStore, and only
trains a corpus when both miss. Per-key locks (and, optionally, a distributed lock)
guarantee that concurrent requests for the same corpus train it once.
*/
package cache
