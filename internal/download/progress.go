package download

// ProgressSink receives byte-level download progress. The Manager
// grows the expected total as album sizes become known and reports
// every chunk written; implementations render this however they like
// (terminal bar, TUI model, nothing).
type ProgressSink interface {
	// Describe sets the label for the work currently in flight.
	Describe(text string)

	// GrowTotal adds n bytes to the expected session total.
	GrowTotal(n int64)

	// Add reports n bytes written since the last call.
	Add(n int64)
}

// NopSink discards all progress.
type NopSink struct{}

func (NopSink) Describe(string) {}
func (NopSink) GrowTotal(int64) {}
func (NopSink) Add(int64)       {}
