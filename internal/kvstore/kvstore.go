// Package kvstore is the config-storage contract named in §6: namespaces
// and typed keys, with an in-memory implementation standing in for a real
// flash-backed NVS store (out of scope per §1 beyond this get/set/commit
// surface). Grounded on the teacher's internal/config/config.go, which
// loads a small typed key set from an external source into a process-wide
// struct — here generalised to arbitrary namespaces instead of one
// hardcoded DeviceConfig.
package kvstore

import "fmt"

// Store is the contract the core consumes (§6): open a namespace, get/set
// typed values, commit or erase.
type Store interface {
	Open(namespace string) (Namespace, error)
}

// Namespace is a handle to one open namespace.
type Namespace interface {
	Close()

	GetU8(key string) (uint8, error)
	GetU16(key string) (uint16, error)
	GetU32(key string) (uint32, error)
	GetI32(key string) (int32, error)
	GetBlob(key string) ([]byte, error)

	SetU8(key string, v uint8) error
	SetU16(key string, v uint16) error
	SetU32(key string, v uint32) error
	SetI32(key string, v int32) error
	SetBlob(key string, v []byte) error

	// Commit durably persists all writes made since the namespace was
	// opened or last committed. The in-memory implementation buffers
	// writes and makes them visible to reads only once Commit returns
	// nil; a real flash-backed Namespace likewise does not persist writes
	// until Commit returns nil.
	Commit() error

	EraseKey(key string) error
	EraseAll() error
}

// Well-known namespace names consumed by the core, per §6.
const (
	NamespaceConfig = "config"
	NamespaceWifi   = "wifi"
	NamespaceStats  = "stats"
)

// Well-known keys consumed by the core, per §6.
const (
	KeyBrightness  = "brightness"
	KeyVolume      = "volume"
	KeyTouchThresh = "touch_thresh"
	KeyPodID       = "pod_id"

	KeySSID = "ssid"
	KeyPass = "pass"

	KeyBootCount   = "boot_count"
	KeyRuntimeS    = "runtime_s"
	KeyTouchEvents = "touch_events"
)

// ErrKeyNotFound is returned by a Get* call for a key that was never set.
var ErrKeyNotFound = fmt.Errorf("kvstore: key not found")
