// Package archive persists finalized turns and evaluation reports as JSON
// files. Persistence is best-effort by design: a failed write is logged by
// the caller and the interview continues.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mockview/mockview/internal/interview"
)

// FileArchive writes session artifacts under root/<session_id>/.
type FileArchive struct {
	root   string
	logger *zap.Logger
}

// New creates a FileArchive rooted at dir. The directory is created on first
// write, not here, so a misconfigured path only surfaces when archiving is
// actually attempted.
func New(dir string, log *zap.Logger) *FileArchive {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileArchive{root: dir, logger: log}
}

// SaveTurn writes one finalized turn as turn_NNN.json.
func (a *FileArchive) SaveTurn(sessionID string, turn *interview.Turn) error {
	name := fmt.Sprintf("turn_%03d.json", turn.TurnNumber)
	return a.write(sessionID, name, turn)
}

// SaveReport writes the evaluation report as report.json.
func (a *FileArchive) SaveReport(sessionID string, report *interview.EvaluationReport) error {
	return a.write(sessionID, "report.json", report)
}

func (a *FileArchive) write(sessionID, name string, payload any) error {
	dir := filepath.Join(a.root, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating archive dir %q: %w", dir, err)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %q: %w", path, err)
	}

	a.logger.Debug("artifact archived", zap.String("path", path))
	return nil
}
