package index

// CorpusIndex defines the interface for corpus file index operations.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type CorpusIndex interface {
	UpsertFile(path, checksum string, refs []string) error
	DeleteFile(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	ByBase(base string) ([]string, error)
	MatchBase(base string) ([]string, error)
	Refs(target string) ([]string, error)
	Close() error
}

// Verify *DB satisfies CorpusIndex at compile time.
var _ CorpusIndex = (*DB)(nil)
