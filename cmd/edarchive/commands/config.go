package commands

import (
	"errors"
	"os"

	"edarchive/internal/components/telemetry"
	"edarchive/internal/edapi"
	"edarchive/internal/resources"
	"edarchive/internal/threadfilter"
	"edarchive/pkg/configutil"
)

const tokenEnv = "ED_API_TOKEN"

type DownloadConfig struct {
	Category  string  `json:"category"`
	Title     string  `json:"title"`
	Threshold float64 `json:"threshold"`
	Limit     int     `json:"limit"`
	Output    string  `json:"output"`
	// Full fetches every thread by id before saving it instead of saving the
	// listing's copy.
	Full bool `json:"full"`
}

type ResourcesConfig struct {
	Output  string            `json:"output"`
	Catalog resources.Catalog `json:"catalog"`
}

type ProcessConfig struct {
	Input   string `json:"input"`
	Output  string `json:"output"`
	Website string `json:"website"`
}

type Config struct {
	BaseUrl           string  `json:"base_url"`
	Token             string  `json:"token"`
	CourseId          int64   `json:"course_id"`
	RequestsPerSecond float64 `json:"requests_per_second"`

	// Tracing exports spans of every api call over otlp when an endpoint is
	// set.
	Tracing telemetry.OtlpConfig `json:"tracing"`

	Download  DownloadConfig  `json:"download"`
	Resources ResourcesConfig `json:"resources"`
	Process   ProcessConfig   `json:"process"`
}

func DefaultConfig() Config {
	return Config{
		BaseUrl:           edapi.DefaultBaseUrl,
		CourseId:          84647,
		RequestsPerSecond: 2,
		Download: DownloadConfig{
			Category:  "Curiosity",
			Title:     "Special Participation A",
			Threshold: threadfilter.DefaultThreshold,
			Output:    "downloaded_threads",
		},
		Resources: ResourcesConfig{
			Output: "course_resources",
		},
		Process: ProcessConfig{
			Input:   "downloaded_threads",
			Output:  "participation_a_data.json",
			Website: "website/data.js",
		},
	}
}

// LoadConfig reads the config file at path on top of the defaults. A missing
// file is only an error when `required` is set. The token from the
// environment wins over the one in the file.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := DefaultConfig()

	loaded, err := configutil.ReadConfig[Config](path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !required:
	case err != nil:
		return cfg, err
	default:
		cfg, err = configutil.MergeDefaults(cfg, loaded)
		if err != nil {
			return cfg, err
		}
	}

	if token, ok := os.LookupEnv(tokenEnv); ok && token != "" {
		cfg.Token = token
	}
	return cfg, nil
}
