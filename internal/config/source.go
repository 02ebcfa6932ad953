package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Source is the external key/value provider for Settings: a settings file
// that must exist, overlaid by the process environment.
type Source struct {
	// EnvFile is the settings file path. Defaults to DefaultEnvFile.
	EnvFile string
	// Environ lists the process environment. Defaults to os.Environ.
	Environ func() []string
}

func (s Source) path() string {
	if s.EnvFile == "" {
		return DefaultEnvFile
	}
	return s.EnvFile
}

// Read returns the merged values with upper-cased keys. Non-empty environment
// values win over the file. A missing file is a *MissingSettingsSourceError.
func (s Source) Read() (map[string]string, error) {
	path := s.path()

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &MissingSettingsSourceError{Path: path}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat settings file %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("settings file %s is a directory", path)
	}

	// The parser error quotes file content, which may be a credential.
	fileValues, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: check KEY=VALUE syntax and quoting", path)
	}

	values := make(map[string]string, len(fileValues))
	for k, v := range fileValues {
		values[strings.ToUpper(k)] = v
	}

	environ := s.Environ
	if environ == nil {
		environ = os.Environ
	}
	for _, kv := range environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || v == "" {
			continue
		}
		values[strings.ToUpper(k)] = v
	}

	return values, nil
}
