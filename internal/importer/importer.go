// Package importer converts XML level files into the YAML level form.
package importer

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/periphery/internal/level"
)

// Importer converts every XML level in a source directory.
type Importer struct {
	fsys   fs.FS
	logger *zap.Logger
}

// New constructs an Importer reading from fsys.
//
// Precondition: fsys and logger must be non-nil.
func New(fsys fs.FS, logger *zap.Logger) *Importer {
	return &Importer{fsys: fsys, logger: logger}
}

// Run converts each *.xml level in srcDir to <name>.yaml in outputDir.
// Exit references to .xml files are rewritten to .yaml so the converted
// set links to itself.
//
// Precondition: srcDir is a directory of fsys; outputDir must exist or be creatable.
// Postcondition: Returns the written file paths in name order, or the first error.
func (imp *Importer) Run(srcDir, outputDir string) ([]string, error) {
	overall := time.Now()

	names, err := fs.Glob(imp.fsys, path.Join(srcDir, "*.xml"))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", srcDir, err)
	}
	sort.Strings(names)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", outputDir, err)
	}

	var written []string
	for _, name := range names {
		t0 := time.Now()
		desc, err := level.Load(imp.fsys, name)
		if err != nil {
			return written, err
		}
		for i, e := range desc.Exits {
			desc.Exits[i] = RetargetExit(e)
		}

		data, err := level.EncodeYAML(desc)
		if err != nil {
			return written, fmt.Errorf("converting %s: %w", name, err)
		}
		// Validate output is loadable before writing.
		if _, err := level.ParseYAML(data); err != nil {
			return written, fmt.Errorf("%s failed validation: %w", name, err)
		}

		outPath := filepath.Join(outputDir, YAMLName(path.Base(name)))
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return written, fmt.Errorf("writing %s: %w", outPath, err)
		}
		written = append(written, outPath)

		imp.logger.Info("level converted",
			zap.String("source", name),
			zap.String("output", outPath),
			zap.Int("walls", len(desc.Walls)),
			zap.Int("exits", len(desc.Exits)),
			zap.Duration("elapsed", time.Since(t0)))
	}

	imp.logger.Info("conversion complete",
		zap.Int("levels", len(written)),
		zap.Duration("elapsed", time.Since(overall)))
	return written, nil
}

// YAMLName replaces an .xml extension with .yaml.
//
// Postcondition: Names without an .xml extension are returned unchanged.
func YAMLName(name string) string {
	if strings.EqualFold(path.Ext(name), ".xml") {
		return name[:len(name)-len(".xml")] + ".yaml"
	}
	return name
}

// RetargetExit returns a copy of an exit record whose file points at the converted level.
func RetargetExit(r level.Record) level.Record {
	out := make(level.Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	if f, ok := out["file"]; ok {
		out["file"] = YAMLName(f)
	}
	return out
}
