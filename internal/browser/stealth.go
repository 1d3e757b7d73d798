package browser

import (
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"

	"go-zhipin-crawler/internal/retry"
)

// Warmup runs a short burst of human-looking activity on a fresh page:
// a few mouse moves and a scroll-down-scroll-back wiggle. Done once after
// the first load, before the crawl proper starts.
func Warmup(page playwright.Page) {
	for i := 0; i < 3; i++ {
		x := float64(rand.Intn(800) + 100)
		y := float64(rand.Intn(600) + 100)
		page.Mouse().Move(x, y)
		pause(100*time.Millisecond, 300*time.Millisecond)
	}

	page.Mouse().Wheel(0, 500)
	pause(500*time.Millisecond, time.Second)
	page.Mouse().Wheel(0, -200)
	pause(500*time.Millisecond, 800*time.Millisecond)
}

func pause(min, max time.Duration) {
	time.Sleep(retry.Jitter(min, max))
}
