// Package storage provides the key/value persistence layer backing the
// user-facing stores (users, playlists, comments, player state snapshots).
package storage

// Well-known keys used by the application's stores.
const (
	KeyUsers         = "users"
	KeyCurrentUser   = "currentUser"
	KeyPlaylists     = "playlists"
	KeyLastPlayed    = "lastPlayed"
	KeyPlaylistPrefs = "playlist_ui_v1"

	// CommentsPrefix is joined with a song ID, e.g. "comments_42".
	CommentsPrefix = "comments_"
)

// Store is a minimal key/value persistence interface. Values are opaque
// byte blobs; callers own the encoding. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the value for key, and whether the key exists.
	Get(key string) ([]byte, bool, error)
	// Set writes the value for key, replacing any existing value.
	Set(key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
	// Keys returns all keys starting with prefix.
	Keys(prefix string) ([]string, error)
}
