//go:build ignore

// Release packaging: go run build.go [version]
//
// Cross-compiles needle for every target into dist/, packs each binary
// (zip for windows, tar.gz elsewhere) and writes SHA256SUMS.
package main

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	appName   = "needle"
	outputDir = "dist"
)

type target struct {
	goos, goarch string
}

func (t target) binaryName() string {
	if t.goos == "windows" {
		return appName + ".exe"
	}
	return appName
}

func (t target) archiveName(version string) string {
	ext := ".tar.gz"
	if t.goos == "windows" {
		ext = ".zip"
	}
	return fmt.Sprintf("%s_%s_%s_%s%s", appName, version, t.goos, t.goarch, ext)
}

var targets = []target{
	{"linux", "amd64"},
	{"linux", "arm64"},
	{"darwin", "amd64"},
	{"darwin", "arm64"},
	{"windows", "amd64"},
	{"windows", "arm64"},
}

func main() {
	version, err := releaseVersion()
	if err != nil {
		log.Fatal(err)
	}

	if err := os.RemoveAll(outputDir); err != nil {
		log.Fatal(err)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		log.Fatal(err)
	}

	var sums []string
	failed := 0
	for _, t := range targets {
		archive, err := release(t, version)
		if err != nil {
			log.Printf("%s/%s: %v", t.goos, t.goarch, err)
			failed++
			continue
		}

		sum, err := sha256File(archive)
		if err != nil {
			log.Fatal(err)
		}
		sums = append(sums, sum+"  "+filepath.Base(archive))
		fmt.Printf("packaged %s\n", filepath.Base(archive))
	}

	if err := os.WriteFile(filepath.Join(outputDir, "SHA256SUMS"), []byte(strings.Join(sums, "\n")+"\n"), 0644); err != nil {
		log.Fatal(err)
	}

	if failed > 0 {
		log.Fatalf("%d of %d targets failed", failed, len(targets))
	}
}

// releaseVersion takes the version from the command line, else from VERSION.
func releaseVersion() (string, error) {
	if len(os.Args) > 1 {
		return strings.TrimPrefix(os.Args[1], "v"), nil
	}
	data, err := os.ReadFile("VERSION")
	if err != nil {
		return "", fmt.Errorf("no version given and VERSION unreadable: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// release builds one target and returns the path of its archive.
func release(t target, version string) (string, error) {
	binPath := filepath.Join(outputDir, t.goos+"_"+t.goarch, t.binaryName())
	defer os.RemoveAll(filepath.Dir(binPath))

	cmd := exec.Command("go", "build",
		"-trimpath",
		"-ldflags", fmt.Sprintf("-s -w -X main.version=%s", version),
		"-o", binPath,
		".",
	)
	cmd.Env = append(os.Environ(), "GOOS="+t.goos, "GOARCH="+t.goarch, "CGO_ENABLED=0")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("build failed: %w", err)
	}

	archive := filepath.Join(outputDir, t.archiveName(version))
	pack := packTarGz
	if t.goos == "windows" {
		pack = packZip
	}
	if err := pack(archive, binPath); err != nil {
		return "", fmt.Errorf("packing failed: %w", err)
	}
	return archive, nil
}

func packZip(archive, binPath string) error {
	out, err := os.Create(archive)
	if err != nil {
		return err
	}
	defer out.Close()

	in, info, err := openWithInfo(binPath)
	if err != nil {
		return err
	}
	defer in.Close()

	zw := zip.NewWriter(out)
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, in); err != nil {
		return err
	}
	return zw.Close()
}

func packTarGz(archive, binPath string) error {
	out, err := os.Create(archive)
	if err != nil {
		return err
	}
	defer out.Close()

	in, info, err := openWithInfo(binPath)
	if err != nil {
		return err
	}
	defer in.Close()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Mode = 0755
	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	if _, err := io.Copy(tw, in); err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}

func openWithInfo(path string) (*os.File, os.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, info, nil
}

func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
