package config

import (
	"os"

	"gopkg.in/ini.v1"
)

// UseraddDefaults mirrors /etc/default/useradd, the KEY=VALUE file
// standard tooling consults for new-account defaults.
type UseraddDefaults struct {
	Group    int
	HomeBase string
	Inactive int
	Expire   string
	Shell    string
	Skel     string
}

// LoadUseraddDefaults parses a /etc/default/useradd style file. A
// missing file yields the zero defaults; callers overlay these onto
// the main Config.
func LoadUseraddDefaults(path string) (UseraddDefaults, error) {
	d := UseraddDefaults{Group: -1, Inactive: -1}
	if path == "" {
		return d, nil
	}
	f, err := ini.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil
		}
		return d, err
	}
	sec := f.Section("")
	if k := sec.Key("GROUP"); k.String() != "" {
		d.Group = k.MustInt(-1)
	}
	d.HomeBase = sec.Key("HOME").String()
	if k := sec.Key("INACTIVE"); k.String() != "" {
		d.Inactive = k.MustInt(-1)
	}
	d.Expire = sec.Key("EXPIRE").String()
	d.Shell = sec.Key("SHELL").String()
	d.Skel = sec.Key("SKEL").String()
	return d, nil
}

// Apply overlays the useradd defaults onto a Config.
func (d UseraddDefaults) Apply(c *Config) {
	if d.HomeBase != "" {
		c.HomeBase = d.HomeBase
	}
	if d.Shell != "" {
		c.Shell = d.Shell
	}
	if d.Skel != "" {
		c.SkelDir = d.Skel
	}
}
