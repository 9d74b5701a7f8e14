package scraper

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/skoom21/zocdoc-scraper/internal/browser"
)

// saveDebugArtifacts writes a full-page screenshot and a markup
// snapshot named {reason}_{YYYYMMDD_HHMMSS}.{png,html} into the output
// directory. Artifact failures are logged and otherwise ignored.
func (s *Scraper) saveDebugArtifacts(page browser.Page, reason string) {
	if err := os.MkdirAll(s.cfg.Output.Dir, 0o755); err != nil {
		s.log.Warnf("Failed to create output directory: %v", err)
		return
	}
	timestamp := s.now().Format("20060102_150405")

	shotPath := filepath.Join(s.cfg.Output.Dir, fmt.Sprintf("%s_%s.png", reason, timestamp))
	if err := page.Screenshot(shotPath); err != nil {
		s.log.Warnf("Failed to save screenshot: %v", err)
	} else {
		s.log.Infof("Saved screenshot: %s", shotPath)
	}

	html, err := page.Content()
	if err != nil {
		s.log.Warnf("Failed to read page content for artifact: %v", err)
		return
	}
	htmlPath := filepath.Join(s.cfg.Output.Dir, fmt.Sprintf("%s_%s.html", reason, timestamp))
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		s.log.Warnf("Failed to save HTML artifact: %v", err)
		return
	}
	s.log.Infof("Saved HTML: %s", htmlPath)
}

// saveHTMLArtifact writes a markup snapshot only.
func (s *Scraper) saveHTMLArtifact(html, reason string) {
	if err := os.MkdirAll(s.cfg.Output.Dir, 0o755); err != nil {
		s.log.Warnf("Failed to create output directory: %v", err)
		return
	}
	timestamp := s.now().Format("20060102_150405")
	path := filepath.Join(s.cfg.Output.Dir, fmt.Sprintf("%s_%s.html", reason, timestamp))
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		s.log.Warnf("Failed to save HTML artifact: %v", err)
		return
	}
	s.log.Debugf("Saved HTML artifact: %s", path)
}

// artifactName sanitizes a provider name for use in artifact filenames.
func artifactName(prefix, target string) string {
	clean := strings.NewReplacer(" ", "_", ",", "", ".", "").Replace(target)
	return prefix + "_" + clean
}
