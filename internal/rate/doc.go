// Package rate implements process-local sliding-window admission control
// keyed by client identity.
//
// The window state is sharded across a fixed set of mutex-guarded maps so
// that concurrent requests from the same client serialize on one shard
// without contending with unrelated clients. State is not persisted; a
// restart clears all windows.
package rate
