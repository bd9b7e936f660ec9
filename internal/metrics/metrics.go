package metrics

import (
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	challengesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "challenges_created_total",
			Help: "Total number of challenges created",
		},
	)
	participantsJoined = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "participants_joined_total",
			Help: "Total number of users enrolled into challenges",
		},
	)
	progressEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progress_entries_total",
			Help: "Total number of progress entries logged",
		},
		[]string{"unit"},
	)
	progressValue = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progress_value_total",
			Help: "Sum of logged progress values",
		},
		[]string{"unit"},
	)
	statusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenge_status_changes_total",
			Help: "Total number of challenge completion flag updates",
		},
		[]string{"completed"},
	)
)

// Register adds the domain collectors to the default registry. Call once from main.
func Register() {
	prometheus.MustRegister(challengesCreated)
	prometheus.MustRegister(participantsJoined)
	prometheus.MustRegister(progressEntries)
	prometheus.MustRegister(progressValue)
	prometheus.MustRegister(statusChanges)
}

func ChallengeCreated() {
	challengesCreated.Inc()
}

func ParticipantJoined() {
	participantsJoined.Inc()
}

// knownUnits bounds the unit label; anything else is counted as "other".
var knownUnits = map[string]bool{
	"hours":    true,
	"minutes":  true,
	"days":     true,
	"books":    true,
	"pages":    true,
	"km":       true,
	"miles":    true,
	"steps":    true,
	"sessions": true,
	"workouts": true,
}

func unitLabel(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	if knownUnits[u] {
		return u
	}
	return "other"
}

func ProgressLogged(unit string, value float64) {
	label := unitLabel(unit)
	progressEntries.WithLabelValues(label).Inc()
	if value > 0 {
		progressValue.WithLabelValues(label).Add(value)
	}
}

func StatusChanged(completed bool) {
	statusChanges.WithLabelValues(strconv.FormatBool(completed)).Inc()
}
