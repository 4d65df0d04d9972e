package stats

// A Recorder stores typed statistics rows. Implementations buffer inserts
// and write them out in batches.
type Recorder interface {
	// CreateTable creates a table shaped like sampleEntry, which must be a
	// flat struct of scalar fields.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers one row for a table that was already created.
	InsertData(tableName string, entry any)

	// ListTables returns the names of all created tables.
	ListTables() []string

	// Flush writes all buffered rows out.
	Flush()

	// Close flushes and releases the backing store.
	Close()
}

// NewNullRecorder returns a Recorder that drops everything. Used when no
// stats file is configured.
func NewNullRecorder() Recorder {
	return nullRecorder{}
}

type nullRecorder struct{}

func (nullRecorder) CreateTable(string, any) {}
func (nullRecorder) InsertData(string, any)  {}
func (nullRecorder) ListTables() []string    { return nil }
func (nullRecorder) Flush()                  {}
func (nullRecorder) Close()                  {}
