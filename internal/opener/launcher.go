package opener

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/pders01/noticeboard/internal/config"
	"github.com/pders01/noticeboard/internal/debuglog"
	"github.com/pders01/noticeboard/internal/validation"
)

// Launcher opens external URLs with the platform opener.
type Launcher struct {
	command   string
	args      []string
	validator *validation.URLValidator
	start     func(*exec.Cmd) error
}

// platformOpeners lists candidate commands per GOOS, tried in order.
var platformOpeners = map[string][][]string{
	"darwin":  {{"open"}},
	"windows": {{"rundll32", "url.dll,FileProtocolHandler"}},
	"linux":   {{"xdg-open"}, {"gio", "open"}, {"sensible-browser"}},
}

func NewLauncher(cfg *config.Config) *Launcher {
	validator := validation.NewURLValidator()
	if cfg.HTTP.AllowPrivate {
		validator = validation.NewPermissiveURLValidator()
	}

	l := &Launcher{validator: validator, start: startDetached}

	if cfg.Links.Opener != "" {
		l.command = cfg.Links.Opener
		return l
	}

	candidates, ok := platformOpeners[runtime.GOOS]
	if !ok {
		candidates = platformOpeners["linux"]
	}
	for _, c := range candidates {
		if found := findCommand(c[0]); found != "" {
			l.command = found
			l.args = c[1:]
			break
		}
	}
	return l
}

// Command reports the opener in use, empty when none was found.
func (l *Launcher) Command() string {
	return l.command
}

// Open validates rawURL and hands it to the opener without waiting for it.
func (l *Launcher) Open(rawURL string) error {
	target, err := l.validator.ValidateAndNormalize(rawURL)
	if err != nil {
		return fmt.Errorf("refusing to open URL: %w", err)
	}

	if l.command == "" {
		return fmt.Errorf("no application found to open URL")
	}

	args := append(append([]string{}, l.args...), target)
	cmd := exec.Command(l.command, args...)

	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", l.command, err)
	}
	debuglog.Debugf("opened %s with %s", target, l.command)
	return nil
}

// startDetached starts GUI applications without blocking on them.
func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func findCommand(commands ...string) string {
	for _, cmd := range commands {
		if _, err := exec.LookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}
