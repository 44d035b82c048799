package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

var exportFilenameRe = regexp.MustCompile(`^dss_final_[0-9]{8}_[0-9]{6}\.txt$`)

// WriteDraftFile writes the rendered draft under outputDir as
// dss_final_{timestamp}.txt and returns the bare filename.
func WriteDraftFile(rendered, outputDir string, exportedAt time.Time) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("dss_final_%s.txt", exportedAt.Format("20060102_150405"))
	path := filepath.Join(outputDir, filename)
	return filename, os.WriteFile(path, []byte(rendered), 0644)
}

// ValidExportFilename rejects download names that are not exactly the
// form WriteDraftFile produces, keeping path traversal out of the
// download handler.
func ValidExportFilename(name string) bool {
	return exportFilenameRe.MatchString(name)
}
