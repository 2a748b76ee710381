package tracker

// Config controls where and how much run history is kept.
type Config struct {
	// StoragePath is the SQLite database file.
	StoragePath string `json:"storage_path,omitempty"`

	// MaxHistory limits the number of runs kept; 0 keeps everything.
	MaxHistory int `json:"max_history,omitempty"`
}
