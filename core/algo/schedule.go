package algo

import (
	"fmt"

	"github.com/huangsam/courseload/schema"
)

const unknownCourse = "Unknown course"

// BuildSchedule turns the first ScheduleSize history codes into numbered slots.
// Codes past the limit are dropped. A code missing from names renders as "Unknown course";
// a code missing from utilities renders an empty utility.
func BuildSchedule(history []string, names map[string]string, utilities map[string]float64) schema.Schedule {
	n := min(len(history), schema.ScheduleSize)
	sched := schema.Schedule{Entries: make([]schema.ScheduleEntry, 0, n)}
	for i, code := range history[:n] {
		name, ok := names[code]
		if !ok {
			name = unknownCourse
		}
		util := ""
		if u, ok := utilities[code]; ok {
			util = schema.FormatUtility(u)
		}
		sched.Entries = append(sched.Entries, schema.ScheduleEntry{
			Slot:        fmt.Sprintf("Subject %d", i+1),
			SubjectCode: code,
			Name:        name,
			Utility:     util,
			Descriptor:  fmt.Sprintf("%s: %s (Utility: %s)", code, name, util),
		})
	}
	return sched
}
