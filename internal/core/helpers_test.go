package core

import (
	"context"
	"os"
	"time"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

type observation struct {
	operation string
	success   bool
}

type recordingMetrics struct {
	seen []observation
}

func (m *recordingMetrics) Observe(_ context.Context, operation string, success bool, _ time.Duration) {
	m.seen = append(m.seen, observation{operation: operation, success: success})
}
