package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration decodes YAML strings like "10s" or "500ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the idstore configuration, loaded from an optional YAML
// file. Zero values fall back to Default().
type Config struct {
	Paths struct {
		Passwd  string `yaml:"passwd"`
		Shadow  string `yaml:"shadow"`
		Group   string `yaml:"group"`
		GShadow string `yaml:"gshadow"`
		Lock    string `yaml:"lock"`
	} `yaml:"paths"`

	UIDMin int `yaml:"uid_min"`
	GIDMin int `yaml:"gid_min"`

	LockWait Duration `yaml:"lock_wait"`

	SkelDir  string `yaml:"skel_dir"`
	HomeBase string `yaml:"home_base"`
	Shell    string `yaml:"shell"`
}

func Default() Config {
	var c Config
	c.Paths.Passwd = "/etc/passwd"
	c.Paths.Shadow = "/etc/shadow"
	c.Paths.Group = "/etc/group"
	c.Paths.GShadow = "/etc/gshadow"
	c.Paths.Lock = "/etc/.idstore.lock"
	c.UIDMin = 1000
	c.GIDMin = 1000
	c.LockWait = Duration(5 * time.Second)
	c.SkelDir = "/etc/skel"
	c.HomeBase = "/home"
	c.Shell = "/bin/bash"
	return c
}

// Load reads a YAML config file and overlays it on the defaults. A
// missing file is not an error: the defaults apply.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, err
	}
	fill(&c)
	return c, nil
}

func fill(c *Config) {
	d := Default()
	if c.Paths.Passwd == "" {
		c.Paths.Passwd = d.Paths.Passwd
	}
	if c.Paths.Shadow == "" {
		c.Paths.Shadow = d.Paths.Shadow
	}
	if c.Paths.Group == "" {
		c.Paths.Group = d.Paths.Group
	}
	if c.Paths.GShadow == "" {
		c.Paths.GShadow = d.Paths.GShadow
	}
	if c.Paths.Lock == "" {
		c.Paths.Lock = d.Paths.Lock
	}
	if c.UIDMin == 0 {
		c.UIDMin = d.UIDMin
	}
	if c.GIDMin == 0 {
		c.GIDMin = d.GIDMin
	}
	if c.LockWait == 0 {
		c.LockWait = d.LockWait
	}
	if c.SkelDir == "" {
		c.SkelDir = d.SkelDir
	}
	if c.HomeBase == "" {
		c.HomeBase = d.HomeBase
	}
	if c.Shell == "" {
		c.Shell = d.Shell
	}
}
