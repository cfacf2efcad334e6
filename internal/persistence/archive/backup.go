package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"datafixer.ai/internal/datafix"
)

type BackupMeta struct {
	WorldID string `json:"world_id"`
	RunID   string `json:"run_id"`
	// StoredVersion is the raw marker found in the save; absent when the
	// world was never versioned.
	StoredVersion *int   `json:"stored_version,omitempty"`
	StoredName    string `json:"stored_name"`
	// PreviousVersion is the version the fix pass evaluated against.
	PreviousVersion int    `json:"previous_version"`
	PreviousName    string `json:"previous_name"`
	Save            string `json:"save"`
	CreatedAt       string `json:"created_at"`
}

// BackupSave copies savePath into backupDir/<world>/<run>/ before a fix pass
// rewrites it, alongside a meta.json recording the gate decision the pass ran
// with.
func BackupSave(backupDir, savePath, worldID, runID string, d datafix.Decision) (string, error) {
	if worldID == "" || runID == "" {
		return "", fmt.Errorf("backup: world and run id required")
	}
	dir := filepath.Join(backupDir, worldID, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	dst := filepath.Join(dir, filepath.Base(savePath))
	if err := copyFile(savePath, dst); err != nil {
		return "", err
	}

	meta := BackupMeta{
		WorldID:         worldID,
		RunID:           runID,
		StoredName:      "none",
		PreviousVersion: d.Previous,
		PreviousName:    datafix.VersionName(d.Previous),
		Save:            filepath.Base(dst),
		CreatedAt:       time.Now().UTC().Format(time.RFC3339Nano),
	}
	if d.HasStored {
		stored := d.Stored
		meta.StoredVersion = &stored
		meta.StoredName = datafix.VersionName(stored)
	}
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, "meta.json"), b, 0o644); err != nil {
		return "", err
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
