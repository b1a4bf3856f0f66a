package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/bobg/bed"
	"github.com/bobg/bed/store"
	"github.com/bobg/bed/store/logging"
)

// loadConfig reads the JSON config file at filename.
// A missing file is not an error:
// the default is a file store rooted at $BED_DIR (or .bed).
func loadConfig(filename string) (map[string]interface{}, error) {
	f, err := os.Open(filename)
	if errors.Is(err, os.ErrNotExist) {
		root := os.Getenv("BED_DIR")
		if root == "" {
			root = ".bed"
		}
		return map[string]interface{}{"type": "file", "root": root}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "opening config file %s", filename)
	}
	defer f.Close()

	var conf map[string]interface{}
	err = json.NewDecoder(f).Decode(&conf)
	return conf, errors.Wrapf(err, "decoding config file %s", filename)
}

// openStore creates the configured store and resolves the audit-log path.
// The audit log lives apart from blob content:
// by default next to (not inside) the file store's blobs dir,
// or at bed-audit.db for other backends; an "audit" key overrides.
func openStore(ctx context.Context, conf map[string]interface{}, logger zerolog.Logger) (bed.Store, string, error) {
	typ, ok := conf["type"].(string)
	if !ok {
		return nil, "", fmt.Errorf("config missing `type` parameter")
	}

	s, err := store.Create(ctx, typ, conf)
	if err != nil {
		return nil, "", errors.Wrapf(err, "creating %s-type store", typ)
	}

	auditPath, ok := conf["audit"].(string)
	if !ok {
		if root, ok := conf["root"].(string); ok {
			auditPath = filepath.Join(root, "audit.db")
		} else {
			auditPath = "bed-audit.db"
		}
	}
	if dir := filepath.Dir(auditPath); dir != "." {
		err = os.MkdirAll(dir, 0755)
		if err != nil {
			return nil, "", errors.Wrapf(err, "ensuring audit dir %s exists", dir)
		}
	}

	if verbose, _ := conf["verbose"].(bool); verbose {
		s = logging.New(s, logger)
	}

	return s, auditPath, nil
}
