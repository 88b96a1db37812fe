package corevm

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// Cache persists serialized Modules (§4.11, §6) to a directory keyed by the
// owning Engine's deterministic id, so a module compiled/built once can be
// reused across process restarts without re-running whatever produced its
// Artifact. Grounded on the teacher's cache.go, adapted from an in-memory
// compilation cache keyed by wazero's own version to an on-disk artifact
// cache keyed by Engine.DeterministicID (this runtime's headless-engine
// equivalent of "the version of wazero that compiled it").
type Cache struct {
	dir string
}

// NewCache creates (if needed) a version-qualified subdirectory of dir and
// returns a Cache rooted there. The subdirectory name embeds the engine's
// deterministic id so artifacts from an incompatible engine configuration
// never collide with compatible ones.
func NewCache(dir string, eng *Engine) (*Cache, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := mkdir(dir); err != nil {
		return nil, err
	}
	dirname := path.Join(dir, "corevm-"+eng.DeterministicID())
	if err := mkdir(dirname); err != nil {
		return nil, err
	}
	return &Cache{dir: dirname}, nil
}

// Put serializes module and writes it under a content-derived filename,
// returning the key later passed to Get.
func (c *Cache) Put(module *Module) (key string, err error) {
	b, err := module.Serialize()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	key = hex.EncodeToString(sum[:])
	if err := os.WriteFile(filepath.Join(c.dir, key), b, 0o600); err != nil {
		return "", err
	}
	return key, nil
}

// Get reads back a module previously stored under key and decodes it
// against eng, or reports os.ErrNotExist if no such entry exists.
func (c *Cache) Get(eng *Engine, key string) (*Module, error) {
	b, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return DeserializeModule(eng, b)
}

func mkdir(dirname string) error {
	if st, err := os.Stat(dirname); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dirname, 0o700); err != nil {
			return fmt.Errorf("create directory %s: %v", dirname, err)
		}
	} else if err != nil {
		return err
	} else if !st.IsDir() {
		return fmt.Errorf("%s is not dir", dirname)
	}
	return nil
}
