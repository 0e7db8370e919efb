// Package config manages the user-level skysim settings stored under
// ~/.skysim: tool settings and catalog data endpoints.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Endpoint is a remote catalog data service a run can fetch from.
type Endpoint struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`

	// APIKeyEnv names the environment variable holding the API key for
	// this endpoint. Keys are never stored in the file itself.
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
}

// Endpoints holds the configured data endpoints.
type Endpoints struct {
	Endpoints []Endpoint `yaml:"endpoints"`
	Selected  string     `yaml:"selected,omitempty"`
}

// Dir returns the skysim settings directory.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".skysim"), nil
}

// LoadEndpoints loads the endpoint configuration from the default
// location.
func LoadEndpoints() (*Endpoints, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadEndpointsFromFile(filepath.Join(dir, "environments.yaml"))
}

// LoadEndpointsFromFile loads endpoint configuration from a specific
// file. A missing file yields the defaults.
func LoadEndpointsFromFile(path string) (*Endpoints, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return defaultEndpoints(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read endpoint config: %w", err)
	}

	var eps Endpoints
	if err := yaml.Unmarshal(data, &eps); err != nil {
		return nil, fmt.Errorf("failed to parse endpoint config %s: %w", path, err)
	}
	return &eps, nil
}

// SaveEndpoints writes the endpoint configuration to the default
// location.
func SaveEndpoints(eps *Endpoints) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(eps)
	if err != nil {
		return fmt.Errorf("failed to marshal endpoint config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "environments.yaml"), data, 0644); err != nil {
		return fmt.Errorf("failed to write endpoint config: %w", err)
	}
	return nil
}

// Get returns the endpoint with the given name.
func (e *Endpoints) Get(name string) (*Endpoint, error) {
	for i := range e.Endpoints {
		if e.Endpoints[i].Name == name {
			return &e.Endpoints[i], nil
		}
	}
	return nil, fmt.Errorf("endpoint %q not configured", name)
}

// Add appends an endpoint, rejecting duplicate names.
func (e *Endpoints) Add(ep Endpoint) error {
	if _, err := e.Get(ep.Name); err == nil {
		return fmt.Errorf("endpoint %q already exists", ep.Name)
	}
	e.Endpoints = append(e.Endpoints, ep)
	return nil
}

// Remove deletes the named endpoint.
func (e *Endpoints) Remove(name string) error {
	for i := range e.Endpoints {
		if e.Endpoints[i].Name == name {
			e.Endpoints = append(e.Endpoints[:i], e.Endpoints[i+1:]...)
			if e.Selected == name {
				e.Selected = ""
			}
			return nil
		}
	}
	return fmt.Errorf("endpoint %q not configured", name)
}

func defaultEndpoints() *Endpoints {
	return &Endpoints{
		Endpoints: []Endpoint{
			{
				Name:      "rubin-data",
				URL:       "https://data.lsst.cloud",
				APIKeyEnv: "SKYSIM_API_KEY",
			},
		},
	}
}
