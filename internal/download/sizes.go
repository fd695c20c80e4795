package download

import (
	"context"
	"fmt"
)

// totalSize sums the declared byte sizes of a set of stream
// descriptors. When the API declared no sizes at all the URLs are
// probed with HEAD requests instead; a failed probe contributes zero
// rather than failing the batch.
func (m *Manager) totalSize(ctx context.Context, jobs []*trackJob) int64 {
	var total int64
	for _, job := range jobs {
		total += job.file.DeclaredSize()
	}
	if total > 0 {
		return total
	}

	for _, job := range jobs {
		n, err := m.client.ContentLength(ctx, job.file.URL)
		if err != nil {
			m.log.Debug("size probe failed", "track", job.describe(), "err", err)
			continue
		}
		total += n
	}
	return total
}

// humanSize formats a byte count for logs.
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
