package timer

import (
	"time"

	"github.com/sadopc/studyflow/internal/store"
)

// TechniqueInfo describes a timer discipline: its default duration and
// whether it cycles through focus/break phases.
type TechniqueInfo struct {
	Name        string
	Description string
	Default     time.Duration
	Cyclic      bool
}

var Techniques = map[store.Technique]TechniqueInfo{
	store.TechniquePomodoro: {
		Name:        "Pomodoro",
		Description: "25min focus + 5min break",
		Default:     25 * time.Minute,
		Cyclic:      true,
	},
	store.TechniqueTimeblock: {
		Name:        "Time Block",
		Description: "Dedicated time blocks",
		Default:     60 * time.Minute,
		Cyclic:      false,
	},
	store.TechniqueFlowtime: {
		Name:        "Flow Time",
		Description: "Natural work rhythm",
		Default:     90 * time.Minute,
		Cyclic:      false,
	},
	store.TechniqueSprint: {
		Name:        "Study Sprint",
		Description: "Short intense bursts",
		Default:     15 * time.Minute,
		Cyclic:      false,
	},
}

// TechniqueOrder fixes the display order of techniques.
var TechniqueOrder = []store.Technique{
	store.TechniquePomodoro,
	store.TechniqueTimeblock,
	store.TechniqueFlowtime,
	store.TechniqueSprint,
}
