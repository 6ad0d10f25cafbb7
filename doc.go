// Package tracked wraps decoded configuration trees (the map[string]any /
// []any shape produced by JSON, YAML, and TOML decoders) so that every read
// performed through the wrapper is recorded. After consumption, Unaccessed
// reports the path of every key that was never touched, which catches both
// fields the consumer forgot to read and unknown fields the input supplied,
// without maintaining a schema or allow-list.
//
// The package provides:
//
//   - Map and Slice, lazy tracking wrappers over mapping and sequence nodes
//   - Unaccessed reporting: sorted root-relative paths (server.host,
//     plugins[0].name) for everything left unread
//   - MarkAccessed/MarkAllAccessed for sections forwarded wholesale to
//     another subsystem
//   - FromJSON/FromYAML/FromTOML ingestion helpers that decode with the
//     corresponding drivers and wrap the top-level mapping
//
// Design policy:
//   - The raw tree is owned by the caller for its full lifetime; the wrappers
//     hold references into it and never mutate it.
//   - Wrapping is lazy and identity-stable: descending into the same key or
//     index twice returns the same child wrapper, with its accumulated state.
//   - Reads take no locks. Wrappers are not safe for concurrent use; callers
//     sharing a tree across goroutines must provide their own mutual
//     exclusion, or lazy child creation can produce two wrappers for one key
//     and split the accounting between them.
//
// Typical usage:
//
//	cfg, err := tracked.FromJSON(data)
//	if err != nil {
//		return err
//	}
//	server, err := cfg.Get("server")
//	if err != nil {
//		return err
//	}
//	host, err := server.(*tracked.Map).Get("host")
//	...
//	for _, path := range cfg.Unaccessed() {
//		log.Printf("unhandled config key: %s", path)
//	}
package tracked
