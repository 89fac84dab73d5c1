package browser

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Open launches the user's default browser at url. Used to view dream
// illustrations the API returns as plain URLs.
func Open(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "linux":
		return exec.Command("xdg-open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
}
