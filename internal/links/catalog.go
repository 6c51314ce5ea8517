package links

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/pders01/noticeboard/internal/debuglog"
	"github.com/pders01/noticeboard/internal/validation"
)

//go:embed links.toml
var linksTOML []byte

// Link is an entry of the link hub.
type Link struct {
	Name        string `toml:"name"`
	URL         string `toml:"url"`
	Description string `toml:"description,omitempty"`
	// Service ties the link to a service tag of a notice.
	Service string `toml:"service,omitempty"`
}

// AffectedBy reports whether the link's service is among services.
func (l Link) AffectedBy(services []string) bool {
	if l.Service == "" {
		return false
	}
	for _, s := range services {
		if strings.EqualFold(strings.TrimSpace(s), l.Service) {
			return true
		}
	}
	return false
}

type catalogFile struct {
	Links []Link `toml:"links"`
}

// Catalog is the ordered list of links shown by the hub.
type Catalog struct {
	links []Link
}

// defaultUserPaths are merged over the built-in catalogue when no explicit
// file is configured.
var defaultUserPaths = []string{
	"~/.config/noticeboard/links.toml",
}

// Load parses the built-in catalogue and merges the user's file over it.
// An explicit path must exist; the default locations are optional.
func Load(userFile string) (*Catalog, error) {
	c, err := Parse(linksTOML)
	if err != nil {
		return nil, fmt.Errorf("parsing built-in links: %w", err)
	}

	if userFile != "" {
		if err := c.mergeFile(userFile); err != nil {
			return nil, err
		}
		return c, nil
	}

	for _, path := range defaultUserPaths {
		path = expandHome(path)
		if err := c.mergeFile(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			debuglog.Warnf("ignoring link file %s: %v", path, err)
		}
	}
	return c, nil
}

// Parse reads a catalogue from TOML data.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	c := &Catalog{}
	for _, l := range file.Links {
		if err := c.add(l); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) mergeFile(path string) error {
	path, err := validation.NewFilePathValidator().ValidateFile(path)
	if err != nil {
		return fmt.Errorf("link file: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading link file: %w", err)
	}
	user, err := Parse(data)
	if err != nil {
		return fmt.Errorf("parsing link file %s: %w", path, err)
	}
	for _, l := range user.links {
		c.Merge(l)
	}
	debuglog.Debugf("merged %d links from %s", len(user.links), path)
	return nil
}

func (c *Catalog) add(l Link) error {
	l.Name = strings.TrimSpace(l.Name)
	if l.Name == "" {
		return fmt.Errorf("link without name")
	}
	if strings.TrimSpace(l.URL) == "" {
		return fmt.Errorf("link %q has no url", l.Name)
	}
	if _, ok := c.Find(l.Name); ok {
		return fmt.Errorf("duplicate link %q", l.Name)
	}
	c.links = append(c.links, l)
	return nil
}

// Merge replaces the link with the same name, or appends it.
func (c *Catalog) Merge(l Link) {
	for i := range c.links {
		if strings.EqualFold(c.links[i].Name, l.Name) {
			c.links[i] = l
			return
		}
	}
	c.links = append(c.links, l)
}

// Find looks a link up by name, ignoring case.
func (c *Catalog) Find(name string) (Link, bool) {
	name = strings.TrimSpace(name)
	for _, l := range c.links {
		if strings.EqualFold(l.Name, name) {
			return l, true
		}
	}
	return Link{}, false
}

// All returns the links in catalogue order.
func (c *Catalog) All() []Link {
	out := make([]Link, len(c.links))
	copy(out, c.links)
	return out
}

// AffectedBy returns the links whose service is among services.
func (c *Catalog) AffectedBy(services []string) []Link {
	var out []Link
	for _, l := range c.links {
		if l.AffectedBy(services) {
			out = append(out, l)
		}
	}
	return out
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
