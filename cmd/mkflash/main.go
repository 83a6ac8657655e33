// Command mkflash builds a flash image for the host machine: a formatted
// file store holding the files of a source directory.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"quadterm/app"
	"quadterm/hal"
	"quadterm/quados/fs/flashfs"
)

const (
	defaultFlashPath = "quadterm.flash"
	defaultFlashSize = 1024 * 1024
)

func main() {
	var (
		srcDir    string
		outPath   string
		flashSize uint
		fixtures  bool
	)
	flag.StringVar(&srcDir, "src", "", "Source directory whose regular files are copied into the image.")
	flag.StringVar(&outPath, "out", defaultFlashPath, "Output flash image path.")
	flag.UintVar(&flashSize, "size", defaultFlashSize, "Flash image size (bytes, multiple of 4096).")
	flag.BoolVar(&fixtures, "fixtures", false, "Also write the built-in example documents.")
	flag.Parse()

	if srcDir == "" && !fixtures {
		fmt.Fprintln(os.Stderr, "error: -src or -fixtures is required")
		os.Exit(2)
	}
	if outPath == "" {
		fmt.Fprintln(os.Stderr, "error: -out is required")
		os.Exit(2)
	}

	if err := run(srcDir, outPath, uint32(flashSize), fixtures); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(srcDir, outPath string, flashSize uint32, fixtures bool) (err error) {
	var files []string
	if srcDir != "" {
		if files, err = sourceFiles(srcDir); err != nil {
			return err
		}
	}

	ff, err := hal.CreateFlash(outPath, flashSize)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := ff.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	store, err := flashfs.FromFlash(ff)
	if err != nil {
		return err
	}
	// Format leaves the store mounted.
	if err := store.Format(); err != nil {
		return err
	}

	if fixtures {
		if err := app.Seed(store); err != nil {
			return err
		}
	}
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %q: %w", path, err)
		}
		name := filepath.Base(path)
		if err := store.WriteFile(name, data); err != nil {
			return fmt.Errorf("write %q: %w", name, err)
		}
	}

	for _, e := range store.List() {
		fmt.Printf("%-*s %6d\n", flashfs.MaxNameBytes, e.Name, e.Size)
	}
	return store.Unmount()
}

// sourceFiles lists the regular files directly inside dir. The store is flat
// so subdirectories are skipped.
func sourceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read src %q: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if len(entry.Name()) > flashfs.MaxNameBytes {
			return nil, fmt.Errorf("%q: %w", entry.Name(), flashfs.ErrNameTooLong)
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
