package store

import (
	"context"
	"fmt"
	"log"
	"time"
)

type seedEntry struct {
	user  string
	value float64
	date  time.Time
	notes string
}

type seedChallenge struct {
	title     string
	target    float64
	unit      string
	start     time.Time
	end       time.Time
	completed bool
	// usersBefore are created right before the challenge, usersAfter right after it.
	usersBefore []seedUser
	usersAfter  []seedUser
	entries     []seedEntry
}

type seedUser struct {
	username string
	color    string
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// Seed loads the demo dataset into an empty store. It is a no-op when any user exists.
func Seed(ctx context.Context, s Store) error {
	existing, err := s.ListUsers(ctx, 1)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if len(existing) > 0 {
		log.Println("Seed: store already has data, skipping")
		return nil
	}

	now := time.Now()
	challenges := []seedChallenge{
		{
			title:  "Study for 712 hours",
			target: 712,
			unit:   "hours",
			start:  day("2024-01-01"),
			end:    day("2024-12-31"),
			usersBefore: []seedUser{
				{"Bro", "#3b82f6"},
				{"Jonas Hendel", "#22c55e"},
				{"Bro 1", "#ec4899"},
				{"Bro 3", "#8b5cf6"},
			},
			entries: []seedEntry{
				{"Bro", 730, now, "Initial progress"},
				{"Jonas Hendel", 726, now, "Initial progress"},
				{"Bro 1", 720, now, "Initial progress"},
				{"Bro 3", 713, now, "Initial progress"},
			},
		},
		{
			title:  "Read 24 books",
			target: 24,
			unit:   "books",
			start:  day("2024-02-01"),
			end:    day("2024-12-31"),
			usersAfter: []seedUser{
				{"Me", "#3b82f6"},
				{"Alex", "#8b5cf6"},
				{"Sarah", "#22c55e"},
			},
			entries: []seedEntry{
				{"Me", 18, now, "Initial progress"},
				{"Alex", 14, now, "Initial progress"},
				{"Sarah", 21, now, "Initial progress"},
			},
		},
		{
			title:     "Workout 150 days",
			target:    150,
			unit:      "days",
			start:     day("2023-01-01"),
			end:       day("2023-12-31"),
			completed: true,
			entries: []seedEntry{
				{"Me", 168, day("2023-12-25"), "Completed"},
				{"Alex", 147, day("2023-12-25"), "Almost there"},
			},
		},
	}

	userIDs := make(map[string]int64)
	createUsers := func(users []seedUser) error {
		for _, u := range users {
			created, err := s.CreateUser(ctx, u.username, "password", u.color)
			if err != nil {
				return err
			}
			userIDs[u.username] = created.ID
		}
		return nil
	}

	for _, sc := range challenges {
		if err := createUsers(sc.usersBefore); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
		c, err := s.CreateChallenge(ctx, sc.title, sc.target, sc.unit, sc.start, sc.end)
		if err != nil {
			return fmt.Errorf("seed challenge %q: %w", sc.title, err)
		}
		if err := createUsers(sc.usersAfter); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
		if sc.completed {
			if _, err := s.SetChallengeCompletion(ctx, c.ID, true); err != nil {
				return fmt.Errorf("seed challenge status: %w", err)
			}
		}

		for _, e := range sc.entries {
			p, err := s.AddParticipant(ctx, userIDs[e.user], c.ID)
			if err != nil {
				return fmt.Errorf("seed participant %q: %w", e.user, err)
			}
			notes := e.notes
			if _, _, err := s.AddProgressEntry(ctx, p.ID, e.value, e.date, &notes); err != nil {
				return fmt.Errorf("seed progress for %q: %w", e.user, err)
			}
		}
	}

	log.Printf("Seed: loaded %d users and %d challenges", len(userIDs), len(challenges))
	return nil
}
