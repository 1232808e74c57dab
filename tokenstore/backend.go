package tokenstore

// Backend is the durable key/value storage the Store persists its slots in.
// Single-slot reads and writes must be atomic; no cross-slot transaction is assumed.
type Backend interface {
	// Get returns the value for key and whether it was present
	Get(key string) (value string, found bool, err error)

	// Set stores value under key, overwriting any existing value
	Set(key, value string) error

	// Delete removes key. Deleting a missing key is not an error
	Delete(key string) error
}
