package browser

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
)

// ScreenshotDebugger captures full-page screenshots when a page has to be
// abandoned, so a broken selector can be diagnosed after the run.
type ScreenshotDebugger struct {
	outputDir string
}

func NewScreenshotDebugger(dir string) *ScreenshotDebugger {
	if dir == "" {
		dir = filepath.Join("logs", "screenshots")
	}
	os.MkdirAll(dir, 0o755)
	return &ScreenshotDebugger{outputDir: dir}
}

// Capture saves a screenshot named after the failure site.
func (s *ScreenshotDebugger) Capture(page playwright.Page, name string) error {
	filename := fmt.Sprintf("%s_%s.png", name, time.Now().Format("2006-01-02_15-04-05"))
	path := filepath.Join(s.outputDir, filename)
	_, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		log.Printf("⚠️ screenshot failed: %v", err)
		return err
	}
	log.Printf("📸 screenshot saved: %s", path)
	return nil
}
