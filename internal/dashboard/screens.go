package dashboard

import "strings"

// Screen names one page of the dashboard.
type Screen string

const (
	ScreenDocker         Screen = "docker"
	ScreenHomeAutomation Screen = "home_automation"
	ScreenMaintenance    Screen = "maintenance"
	ScreenLogs           Screen = "logs"
)

var screenOrder = []Screen{ScreenDocker, ScreenHomeAutomation, ScreenMaintenance, ScreenLogs}

// Screens returns every screen in tab order.
func Screens() []Screen {
	out := make([]Screen, len(screenOrder))
	copy(out, screenOrder)
	return out
}

// ParseScreen accepts a screen name in any case, with dashes or underscores.
func ParseScreen(name string) (Screen, bool) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for _, s := range screenOrder {
		if string(s) == normalized {
			return s, true
		}
	}
	return "", false
}

// Title is the tab label.
func (s Screen) Title() string {
	switch s {
	case ScreenDocker:
		return "Docker"
	case ScreenHomeAutomation:
		return "Home automation"
	case ScreenMaintenance:
		return "Maintenance"
	case ScreenLogs:
		return "Logs"
	default:
		return string(s)
	}
}

// Next returns the screen after s, wrapping around.
func (s Screen) Next() Screen {
	return s.offset(1)
}

// Prev returns the screen before s, wrapping around.
func (s Screen) Prev() Screen {
	return s.offset(len(screenOrder) - 1)
}

func (s Screen) offset(n int) Screen {
	for i, candidate := range screenOrder {
		if candidate == s {
			return screenOrder[(i+n)%len(screenOrder)]
		}
	}
	return screenOrder[0]
}
