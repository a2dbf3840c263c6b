package core

import (
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Application ApplicationConfig `toml:"application"`
	Logging     LoggingConfig     `toml:"logging"`
	Vulkan      VulkanConfig      `toml:"vulkan"`
	Shaders     ShaderConfig      `toml:"shaders"`
}

type ApplicationConfig struct {
	Name   string `toml:"name"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type LoggingConfig struct {
	Level        string `toml:"level"`
	ReportCaller bool   `toml:"report_caller"`
}

type VulkanConfig struct {
	MinAPIVersion    string   `toml:"min_api_version"`
	Validation       bool     `toml:"validation"`
	Layers           []string `toml:"layers"`
	DeviceExtensions []string `toml:"device_extensions"`
}

type ShaderConfig struct {
	Path          string `toml:"path"`
	VertexEntry   string `toml:"vertex_entry"`
	FragmentEntry string `toml:"fragment_entry"`
	Watch         bool   `toml:"watch"`
}

// APIVersion is a parsed "major.minor[.patch]" version string.
type APIVersion struct {
	Major, Minor, Patch uint32
}

func (v APIVersion) String() string {
	return strconv.FormatUint(uint64(v.Major), 10) + "." +
		strconv.FormatUint(uint64(v.Minor), 10) + "." +
		strconv.FormatUint(uint64(v.Patch), 10)
}

func ParseAPIVersion(s string) (APIVersion, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) < 2 || len(parts) > 3 {
		return APIVersion{}, errors.Newf("invalid api version %q, expected major.minor[.patch]", s)
	}
	var nums [3]uint32
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return APIVersion{}, errors.Wrapf(err, "invalid api version %q", s)
		}
		nums[i] = uint32(n)
	}
	return APIVersion{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

func DefaultConfig() *Config {
	return &Config{
		Application: ApplicationConfig{
			Name:   "Hello Triangle",
			Width:  800,
			Height: 600,
		},
		Logging: LoggingConfig{
			Level:        "info",
			ReportCaller: true,
		},
		Vulkan: VulkanConfig{
			MinAPIVersion: "1.3",
			Validation:    true,
			Layers:        []string{"VK_LAYER_KHRONOS_validation"},
			DeviceExtensions: []string{
				"VK_KHR_swapchain",
				"VK_KHR_spirv_1_4",
				"VK_KHR_synchronization2",
				"VK_KHR_create_renderpass2",
			},
		},
		Shaders: ShaderConfig{
			Path:          "shaders/slang.spv",
			VertexEntry:   "vertMain",
			FragmentEntry: "fragMain",
			Watch:         true,
		},
	}
}

// LoadConfig reads the TOML file at path on top of the defaults, then applies
// environment overrides. Variables from envFile are loaded first but never
// replace variables already set in the process environment. A missing config
// or env file is not an error.
func LoadConfig(path, envFile string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			LogWarn("config file %s not found, using defaults", path)
		case err != nil:
			return nil, errors.Wrap(err, "reading config file")
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrap(err, "parsing config file")
			}
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "loading env file %s", envFile)
		}
	}

	if err := applyEnvOverrides(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating config")
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("IGNITE_LOG_LEVEL"); ok && v != "" {
		cfg.Logging.Level = v
	}
	if v, ok := lookup("IGNITE_VALIDATION"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "IGNITE_VALIDATION=%q", v)
		}
		cfg.Vulkan.Validation = b
	}
	if v, ok := lookup("IGNITE_SHADER_PATH"); ok && v != "" {
		cfg.Shaders.Path = v
	}
	if v, ok := lookup("IGNITE_MIN_API_VERSION"); ok && v != "" {
		cfg.Vulkan.MinAPIVersion = v
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.Application.Name == "" {
		errs = append(errs, "application.name is required")
	}
	if c.Application.Width == 0 || c.Application.Height == 0 {
		errs = append(errs, "application.width and application.height must be greater than 0")
	}
	if _, err := ParseAPIVersion(c.Vulkan.MinAPIVersion); err != nil {
		errs = append(errs, "vulkan.min_api_version: "+err.Error())
	}
	if c.Shaders.Path == "" {
		errs = append(errs, "shaders.path is required")
	}
	if c.Shaders.VertexEntry == "" || c.Shaders.FragmentEntry == "" {
		errs = append(errs, "shaders.vertex_entry and shaders.fragment_entry are required")
	}

	if len(errs) > 0 {
		return errors.Newf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// MinAPIVersion returns the parsed minimum API version. Validate must have
// succeeded beforehand.
func (c *Config) MinAPIVersion() APIVersion {
	v, _ := ParseAPIVersion(c.Vulkan.MinAPIVersion)
	return v
}
