package main

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Profile is one named connection entry in the YAML config file, so
// engineers don't retype connection strings for every invocation.
type Profile struct {
	Name      string `yaml:"name"`
	DSN       string `yaml:"dsn"`
	Namespace string `yaml:"namespace"`
}

// ProfileFile is the on-disk shape of the connection-profile config file,
// default path $HOME/.dbjson.yaml.
type ProfileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

func loadProfileFile(path string) (*ProfileFile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &ProfileFile{}, nil
	}
	if err != nil {
		return nil, err
	}
	var pf ProfileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse profile file %s: %w", path, err)
	}
	return &pf, nil
}

func (pf *ProfileFile) lookup(name string) (*Profile, bool) {
	for i := range pf.Profiles {
		if pf.Profiles[i].Name == name {
			return &pf.Profiles[i], true
		}
	}
	return nil, false
}

func defaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dbjson.yaml"
	}
	return home + "/.dbjson.yaml"
}
