package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	AppName               = "taskapp"
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "tasks.db"
	DefaultRemindersName  = "reminders.yaml"
	DefaultLogName        = "taskapp.log"
	DefaultReminderPoll   = 30

	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "TASKAPP_CONFIG"
)

type Keymap struct {
	Quit    string `toml:"quit"`
	New     string `toml:"new"`
	Up      string `toml:"up"`
	Down    string `toml:"down"`
	Select  string `toml:"select"`
	Delete  string `toml:"delete"`
	Search  string `toml:"search"`
	Confirm string `toml:"confirm"`
	Cancel  string `toml:"cancel"`
}

type Config struct {
	DBPath              string `toml:"db_path"`
	RemindersPath       string `toml:"reminders_path"`
	LogPath             string `toml:"log_path"`
	ReminderPollSeconds int    `toml:"reminder_poll_seconds"`
	Keys                Keymap `toml:"keys"`
}

// ResolveConfigPath picks $TASKAPP_CONFIG, then the user config directory,
// then a dot directory in $HOME.
func ResolveConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, AppName, DefaultConfigFileName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "."+AppName, DefaultConfigFileName)
	}
	return DefaultConfigFileName
}

// LoadOrCreate reads path, writing the defaults there first if it does not
// exist. Relative data paths are resolved against the config directory.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg.resolve(filepath.Dir(path)), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBName
	}
	if cfg.RemindersPath == "" {
		cfg.RemindersPath = DefaultRemindersName
	}
	if cfg.LogPath == "" {
		cfg.LogPath = DefaultLogName
	}
	if cfg.ReminderPollSeconds < 0 {
		cfg.ReminderPollSeconds = 0
	}
	cfg.Keys = cfg.Keys.withDefaults(defaultConfig().Keys)
	return cfg.resolve(filepath.Dir(path)), nil
}

func (c Config) resolve(dir string) Config {
	c.DBPath = resolvePath(dir, c.DBPath)
	c.RemindersPath = resolvePath(dir, c.RemindersPath)
	c.LogPath = resolvePath(dir, c.LogPath)
	return c
}

func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) || dir == "" {
		return p
	}
	return filepath.Join(dir, p)
}

func (k Keymap) withDefaults(d Keymap) Keymap {
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&k.Quit, d.Quit)
	fill(&k.New, d.New)
	fill(&k.Up, d.Up)
	fill(&k.Down, d.Down)
	fill(&k.Select, d.Select)
	fill(&k.Delete, d.Delete)
	fill(&k.Search, d.Search)
	fill(&k.Confirm, d.Confirm)
	fill(&k.Cancel, d.Cancel)
	return k
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		DBPath:              DefaultDBName,
		RemindersPath:       DefaultRemindersName,
		LogPath:             DefaultLogName,
		ReminderPollSeconds: DefaultReminderPoll,
		Keys: Keymap{
			Quit:    "q",
			New:     "a",
			Up:      "k",
			Down:    "j",
			Select:  "enter",
			Delete:  "d",
			Search:  "/",
			Confirm: "enter",
			Cancel:  "esc",
		},
	}
}
