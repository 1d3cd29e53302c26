package providers

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gookit/validate"
	"ytstat/internal/structures"
)

type CnfValidatorInterface interface {
	Validate() error
}

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) CnfValidatorInterface {
	return &CnfValidator{conf: conf}
}

// Validate runs the struct tag rules first and then the checks that span
// several sections.
func (c *CnfValidator) Validate() error {
	v := validate.Struct(c.conf)
	if !v.Validate() {
		return fmt.Errorf("config validation failed: %s", v.Errors.String())
	}

	if c.conf.Persistence.Backend == "sqlite" && c.conf.Persistence.SQLitePath == "" {
		return errors.New("config validation failed: persistence.sqlitePath is required for the sqlite backend")
	}
	if r := c.conf.Quota.LowPriorityRatio; r < 0 || r > 1 {
		return fmt.Errorf("config validation failed: quota.lowPriorityRatio %.2f is outside 0..1", r)
	}

	if _, ok := c.conf.Collection.Modes[c.conf.Collection.DefaultMode]; !ok {
		return fmt.Errorf("config validation failed: default mode %q is not one of %v", c.conf.Collection.DefaultMode, modeNames(c.conf.Collection.Modes))
	}
	for name, mode := range c.conf.Collection.Modes {
		switch mode.Discovery {
		case "", "playlist", "rss":
		default:
			return fmt.Errorf("config validation failed: mode %q has unknown discovery %q", name, mode.Discovery)
		}
		if mode.VideosPerChannel < 0 || mode.VideosPerChannel > 50 {
			return fmt.Errorf("config validation failed: mode %q videosPerChannel must be within 0..50", name)
		}
	}
	return nil
}

func modeNames(modes map[string]structures.ModeConfig) []string {
	names := make([]string, 0, len(modes))
	for name := range modes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
