package running

import (
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/codetrek/needle/utils"
)

// version is set from main, which gets it through -ldflags "-X main.version=...".
var version = "dev"

func SetVersion(ver string) {
	if ver == "" {
		return
	}
	version = ver
}

func Version() string {
	return version
}

var (
	homeOnce    sync.Once
	userHomeDir string
)

// UserHomeDir returns the user's home directory, or the working directory
// when it cannot be determined.
func UserHomeDir() string {
	homeOnce.Do(func() {
		dir, err := os.UserHomeDir()
		if err != nil {
			log.Printf("Failed to get user's home directory: %v", err)
			dir = "."
		}
		userHomeDir = dir
	})
	return userHomeDir
}

var (
	exeOnce    sync.Once
	executable string
)

func Executable() string {
	exeOnce.Do(func() {
		path, err := os.Executable()
		if err != nil {
			log.Printf("Failed to get executable path: %v", err)
			path = os.Args[0]
		}
		executable = utils.NormalizePath(path)
	})
	return executable
}

func ExecutablePath() string {
	return filepath.Dir(Executable())
}
