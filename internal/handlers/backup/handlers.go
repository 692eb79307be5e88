// Package backup serves zip downloads and restores of the flat-file data
// directory. Downloads are always written decrypted for portability; restores
// go through the storage layer so encryption is reapplied when enabled.
package backup

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"earntrack/internal/config"
	"earntrack/internal/services/ledger"
	"earntrack/internal/services/storage"
)

var (
	cfg   *config.Config
	store *storage.Storage
	ldg   *ledger.Ledger
)

// Initialize sets up the backup package with required dependencies
func Initialize(c *config.Config, s *storage.Storage, l *ledger.Ledger) {
	cfg = c
	store = s
	ldg = l
}

// HandleBackup streams a zip of every record file in the data directory.
func HandleBackup(w http.ResponseWriter, r *http.Request) {
	// Timestamp plus a short random suffix so concurrent downloads never
	// collide in the client's download directory.
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("earntrack_backup_%s_%s.zip", timestamp, uuid.NewString()[:8])

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	zw := zip.NewWriter(w)
	defer zw.Close()

	dataDir := cfg.DataDirectory
	err := filepath.Walk(dataDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(path), ".csv") {
			return nil
		}

		relPath, err := filepath.Rel(dataDir, path)
		if err != nil {
			return err
		}

		f, err := zw.Create(relPath)
		if err != nil {
			return err
		}

		// Read via storage so encrypted files land in the archive as
		// plaintext CSV.
		data, err := store.ReadFile(path)
		if err != nil {
			return err
		}
		_, err = f.Write(data)
		return err
	})

	if err != nil {
		// Headers are already sent at this point, all we can do is log.
		log.Printf("Error creating backup: %v", err)
	}
}

// HandleRestore accepts an uploaded backup zip and restores its CSV files.
func HandleRestore(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(50 << 20); err != nil {
		http.Error(w, "File too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Error reading file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".zip") {
		http.Error(w, "Only ZIP backup files are allowed", http.StatusBadRequest)
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Error reading file", http.StatusInternalServerError)
		return
	}

	zipReader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		http.Error(w, "Invalid ZIP file", http.StatusBadRequest)
		return
	}

	restoredCount := 0
	for _, zipFile := range zipReader.File {
		if zipFile.FileInfo().IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(zipFile.Name), ".csv") {
			continue
		}

		// Use only the base name to prevent path traversal
		baseName := filepath.Base(zipFile.Name)
		if strings.Contains(baseName, "..") {
			continue
		}

		rc, err := zipFile.Open()
		if err != nil {
			log.Printf("Error opening zip entry %s: %v", zipFile.Name, err)
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			log.Printf("Error reading zip entry %s: %v", zipFile.Name, err)
			continue
		}

		// Write via storage (handles encryption if enabled)
		destPath := filepath.Join(cfg.DataDirectory, baseName)
		if err := store.WriteFile(destPath, data, 0644); err != nil {
			log.Printf("Error writing file %s: %v", destPath, err)
			continue
		}

		restoredCount++
		log.Printf("Restored file: %s", baseName)
	}

	if restoredCount == 0 {
		http.Error(w, "No CSV files found in backup", http.StatusBadRequest)
		return
	}

	// The restore bypassed the ledger, so its cached snapshots no longer
	// reflect what is on disk.
	ldg.InvalidateCaches()

	log.Printf("Restore complete: %d files restored", restoredCount)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Restored %d files", restoredCount)
}
