package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"route-planner-service/internal/aco"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadEnv reads .env into the environment when present. Variables already
// set win.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
}

// Get returns the trimmed value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetFloat(key string, fallback float64) (float64, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}

// Planner is the layout of the planner YAML file. Any field left out keeps
// the value it had before loading.
type Planner struct {
	aco.Params `yaml:",inline"`
	Seed       *int64 `yaml:"seed"`
}

// LoadPlanner layers the YAML file at path over base. An empty path returns
// base unchanged. Unknown keys are an error.
func LoadPlanner(path string, base aco.Params) (Planner, error) {
	out := Planner{Params: base}
	if path == "" {
		return out, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Planner{}, fmt.Errorf("config: read %q: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&out); err != nil && !errors.Is(err, io.EOF) {
		return Planner{}, fmt.Errorf("config: parse %q: %w", path, err)
	}

	return out, nil
}
