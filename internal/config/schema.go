package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joeycumines/goapjobs/internal/jobs"
	"github.com/joeycumines/goapjobs/internal/logging"
)

// OptionType represents the expected type of a configuration option value.
type OptionType string

const (
	TypeString   OptionType = "string"
	TypeBool     OptionType = "bool"
	TypeInt      OptionType = "int"
	TypeDuration OptionType = "duration"
	// TypeLevel is a log level: debug, info, warn or error.
	TypeLevel OptionType = "level"
	// TypePriority is a task priority such as "high" or "very-low".
	TypePriority OptionType = "priority"
)

// ConfigOption declares a single configuration option.
type ConfigOption struct {
	// Key is the option name as it appears in the config file (kebab-case).
	Key         string
	Type        OptionType
	Default     string
	Description string
	// Section is "" for global options.
	Section string
	// EnvVar overrides the file value when set, even to "".
	EnvVar string
}

// QualifiedKey is "section.key", or just the key for global options.
func (o ConfigOption) QualifiedKey() string {
	if o.Section == "" {
		return o.Key
	}
	return o.Section + "." + o.Key
}

// ConfigSchema declares the known options. It drives validation, help
// output, env var overrides and the typed views.
type ConfigSchema struct {
	options   []*ConfigOption
	byKey     map[string]*ConfigOption
	bySection map[string]map[string]*ConfigOption
}

// NewSchema creates a new empty ConfigSchema.
func NewSchema() *ConfigSchema {
	return &ConfigSchema{
		byKey:     make(map[string]*ConfigOption),
		bySection: make(map[string]map[string]*ConfigOption),
	}
}

// Register adds opt. Registering the same section and key twice replaces
// the earlier lookup entry.
func (s *ConfigSchema) Register(opt ConfigOption) {
	ref := new(ConfigOption)
	*ref = opt
	s.options = append(s.options, ref)
	if opt.Section == "" {
		s.byKey[opt.Key] = ref
		return
	}
	if s.bySection[opt.Section] == nil {
		s.bySection[opt.Section] = make(map[string]*ConfigOption)
	}
	s.bySection[opt.Section][opt.Key] = ref
}

// RegisterAll adds multiple ConfigOptions to the schema.
func (s *ConfigSchema) RegisterAll(opts []ConfigOption) {
	for _, opt := range opts {
		s.Register(opt)
	}
}

// Lookup returns the option for key in section ("" for global), or nil.
func (s *ConfigSchema) Lookup(section, key string) *ConfigOption {
	if section == "" {
		return s.byKey[key]
	}
	return s.bySection[section][key]
}

// HasSection reports whether any option is registered under section.
func (s *ConfigSchema) HasSection(section string) bool {
	_, ok := s.bySection[section]
	return ok
}

// IsKnown reports whether key may appear in section. Global keys are
// accepted in every section.
func (s *ConfigSchema) IsKnown(section, key string) bool {
	if section != "" && s.bySection[section][key] != nil {
		return true
	}
	return s.byKey[key] != nil
}

// Options returns every registered option in registration order.
func (s *ConfigSchema) Options() []ConfigOption {
	out := make([]ConfigOption, 0, len(s.options))
	for _, o := range s.options {
		out = append(out, *o)
	}
	return out
}

// SectionOptions returns the options registered for section, "" being the
// global options.
func (s *ConfigSchema) SectionOptions(section string) []ConfigOption {
	var out []ConfigOption
	for _, o := range s.options {
		if o.Section == section {
			out = append(out, *o)
		}
	}
	return out
}

// Sections returns the registered non-empty section names, sorted.
func (s *ConfigSchema) Sections() []string {
	out := make([]string, 0, len(s.bySection))
	for sec := range s.bySection {
		out = append(out, sec)
	}
	sort.Strings(out)
	return out
}

// Resolve returns the effective value of key in section: the option's
// environment variable, then the file (section first, then global), then
// the schema default.
func (s *ConfigSchema) Resolve(c *Config, section, key string) string {
	opt := s.Lookup(section, key)
	if opt != nil && opt.EnvVar != "" {
		if v, ok := os.LookupEnv(opt.EnvVar); ok {
			return v
		}
	}
	if c != nil {
		if v, ok := c.GetOption(section, key); ok {
			return v
		}
	}
	if opt != nil {
		return opt.Default
	}
	return ""
}

// ResolveBool resolves key and parses it as a boolean. Empty is false.
func (s *ConfigSchema) ResolveBool(c *Config, section, key string) (bool, error) {
	v := s.Resolve(c, section, key)
	if v == "" {
		return false, nil
	}
	b, err := parseBool(v)
	if err != nil {
		return false, optionError(section, key, err)
	}
	return b, nil
}

// ResolveInt resolves key and parses it as an integer. Empty is zero.
func (s *ConfigSchema) ResolveInt(c *Config, section, key string) (int, error) {
	v := s.Resolve(c, section, key)
	if v == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, optionError(section, key, err)
	}
	return i, nil
}

// ResolveDuration resolves key and parses it with time.ParseDuration.
// Empty is zero.
func (s *ConfigSchema) ResolveDuration(c *Config, section, key string) (time.Duration, error) {
	v := s.Resolve(c, section, key)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, optionError(section, key, err)
	}
	return d, nil
}

func optionError(section, key string, err error) error {
	if section == "" {
		return fmt.Errorf("config option %q: %w", key, err)
	}
	return fmt.Errorf("config option %q in [%s]: %w", key, section, err)
}

// ValidateConfig checks c against s and returns human-readable issues,
// sorted. It reports unknown sections, unknown options and values that do
// not parse as the declared type.
func ValidateConfig(c *Config, s *ConfigSchema) []string {
	var issues []string

	for key, value := range c.Global {
		opt := s.Lookup("", key)
		if opt == nil {
			issues = append(issues, fmt.Sprintf("unknown global option: %q (value: %q)", key, value))
			continue
		}
		if err := validateType(opt.Type, value); err != nil {
			issues = append(issues, fmt.Sprintf("global option %q: %v", key, err))
		}
	}

	for section, opts := range c.Sections {
		if !s.HasSection(section) {
			issues = append(issues, fmt.Sprintf("unknown section: [%s]", section))
			continue
		}
		for key, value := range opts {
			if !s.IsKnown(section, key) {
				issues = append(issues, fmt.Sprintf("unknown option in [%s]: %q (value: %q)", section, key, value))
				continue
			}
			opt := s.Lookup(section, key)
			if opt == nil {
				opt = s.Lookup("", key)
			}
			if err := validateType(opt.Type, value); err != nil {
				issues = append(issues, fmt.Sprintf("option %q in [%s]: %v", key, section, err))
			}
		}
	}

	sort.Strings(issues)
	return issues
}

func validateType(t OptionType, value string) error {
	switch t {
	case TypeString, "":
		return nil
	case TypeBool:
		if _, err := parseBool(value); err != nil {
			return fmt.Errorf("expected bool, got %q", value)
		}
	case TypeInt:
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("expected int, got %q", value)
		}
	case TypeDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("expected duration, got %q", value)
		}
	case TypeLevel:
		if _, err := logging.ParseLevel(value); err != nil {
			return fmt.Errorf("expected log level, got %q", value)
		}
	case TypePriority:
		if _, ok := jobs.ParsePriority(value); !ok {
			return fmt.Errorf("expected priority, got %q", value)
		}
	default:
		return fmt.Errorf("unknown option type %q", t)
	}
	return nil
}

// FormatHelp lists every option grouped by section.
func (s *ConfigSchema) FormatHelp() string {
	var b strings.Builder

	if globals := s.SectionOptions(""); len(globals) > 0 {
		b.WriteString("Global Options:\n")
		for _, o := range globals {
			writeOptionHelp(&b, o)
		}
	}

	for _, sec := range s.Sections() {
		fmt.Fprintf(&b, "\n[%s] Options:\n", sec)
		for _, o := range s.SectionOptions(sec) {
			writeOptionHelp(&b, o)
		}
	}

	return b.String()
}

func writeOptionHelp(b *strings.Builder, o ConfigOption) {
	fmt.Fprintf(b, "  %-24s %s", o.Key, o.Description)
	parts := make([]string, 0, 3)
	if o.Type != "" && o.Type != TypeString {
		parts = append(parts, "type: "+string(o.Type))
	}
	if o.Default != "" {
		parts = append(parts, "default: "+o.Default)
	}
	if o.EnvVar != "" {
		parts = append(parts, "env: "+o.EnvVar)
	}
	if len(parts) > 0 {
		fmt.Fprintf(b, " (%s)", strings.Join(parts, ", "))
	}
	b.WriteString("\n")
}

// DefaultSchema returns every option goapjobs understands.
func DefaultSchema() *ConfigSchema {
	s := NewSchema()
	s.RegisterAll(defaultGlobalOptions())
	s.RegisterAll(defaultSectionOptions())
	return s
}

func defaultGlobalOptions() []ConfigOption {
	return []ConfigOption{
		{Key: "verbose", Type: TypeBool, Default: "false", Description: "Log at debug level"},
		{Key: "log.level", Type: TypeLevel, Default: "info", Description: "Log level: debug, info, warn, error", EnvVar: "GOAPJOBS_LOG_LEVEL"},
		{Key: "log.file", Type: TypeString, Description: "Log file path (JSON output)", EnvVar: "GOAPJOBS_LOG_FILE"},
		{Key: "log.max-size-mb", Type: TypeInt, Default: "10", Description: "Max log file size in MB before rotation"},
		{Key: "log.max-files", Type: TypeInt, Default: "5", Description: "Max number of rotated log backup files"},
		{Key: "log.buffer-size", Type: TypeInt, Default: "1000", Description: "In-memory log buffer size (entries)"},
	}
}

func defaultSectionOptions() []ConfigOption {
	return []ConfigOption{
		{Key: "max-workers", Section: "jobs", Type: TypeInt, Default: "0", Description: "Worker pool size, 0 for one per hardware thread", EnvVar: "GOAPJOBS_MAX_WORKERS"},
		{Key: "stop-timeout", Section: "jobs", Type: TypeDuration, Default: "5s", Description: "How long shutdown waits for each worker"},
		{Key: "lock-os-thread", Section: "jobs", Type: TypeBool, Default: "false", Description: "Pin each worker to an OS thread"},

		{Key: "heuristic", Section: "planner", Type: TypeString, Default: "distance", Description: "distance, zero, or an expression"},
		{Key: "heuristic-scale", Section: "planner", Type: TypeInt, Default: "2", Description: "Weight of the distance heuristic"},
		{Key: "max-nodes", Section: "planner", Type: TypeInt, Default: "0", Description: "Expansion limit per search, 0 for none"},
		{Key: "strict-preconditions", Section: "planner", Type: TypeBool, Default: "false", Description: "Refuse to apply actions whose preconditions are unmet"},

		{Key: "ticks", Section: "simulate", Type: TypeInt, Default: "20", Description: "Ticks to run"},

		{Key: "tasks", Section: "stress", Type: TypeInt, Default: "1000", Description: "Top level tasks to submit"},
		{Key: "depth", Section: "stress", Type: TypeInt, Default: "3", Description: "Nested waits per task"},
		{Key: "priority", Section: "stress", Type: TypePriority, Default: "normal", Description: "Priority of submitted tasks"},
	}
}
