package programs

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type seedProgram struct {
	slug        string
	title       string
	description string
	goal        Goal
	difficulty  Difficulty
	equipment   []string
	weeks       int
	days        int
	minutes     int
	featured    bool
	published   bool
	sessions    []string // cycled to build each day's workout
}

var catalog = []seedProgram{
	{
		slug: "fat-burn-starter", title: "Fat Burn Starter",
		description: "Low impact sessions that build a daily movement habit.",
		goal: GoalWeightLoss, difficulty: DifficultyBeginner, equipment: []string{"none"},
		weeks: 2, days: 3, minutes: 25, featured: true, published: true,
		sessions: []string{"Walking Cardio", "Bodyweight Circuit", "Step Intervals"},
	},
	{
		slug: "strength-foundations", title: "Strength Foundations",
		description: "Learn the core lifts with dumbbells at home.",
		goal: GoalMuscleGain, difficulty: DifficultyBeginner, equipment: []string{"dumbbells"},
		weeks: 2, days: 3, minutes: 35, featured: true, published: true,
		sessions: []string{"Upper Body", "Lower Body", "Full Body"},
	},
	{
		slug: "morning-yoga-flow", title: "Morning Yoga Flow",
		description: "Gentle flows to open the hips and shoulders.",
		goal: GoalFlexibility, difficulty: DifficultyBeginner, equipment: []string{"none"},
		weeks: 1, days: 4, minutes: 20, featured: true, published: true,
		sessions: []string{"Sun Salutations", "Hip Openers", "Spine Mobility", "Restorative Flow"},
	},
	{
		slug: "mobility-reset", title: "Mobility Reset",
		description: "Joint friendly sessions for returning after injury.",
		goal: GoalRehabMobility, difficulty: DifficultyBeginner, equipment: []string{"bands"},
		weeks: 1, days: 5, minutes: 15, published: true,
		sessions: []string{"Ankle and Knee Care", "Shoulder Stability", "Core Activation"},
	},
	{
		slug: "endurance-builder", title: "Endurance Builder",
		description: "Progressive intervals to raise your aerobic base.",
		goal: GoalEndurance, difficulty: DifficultyIntermediate, equipment: []string{"none"},
		weeks: 2, days: 4, minutes: 40, published: true,
		sessions: []string{"Tempo Intervals", "Long Steady Effort", "Hill Repeats", "Recovery Session"},
	},
	{
		slug: "advanced-hiit", title: "Advanced HIIT",
		description: "High intensity intervals for experienced athletes.",
		goal: GoalWeightLoss, difficulty: DifficultyAdvanced, equipment: []string{"none"},
		weeks: 2, days: 4, minutes: 30, published: true,
		sessions: []string{"Tabata Blast", "EMOM Ladder", "Sprint Intervals", "Metcon Finisher"},
	},
	{
		slug: "everyday-fitness", title: "Everyday Fitness",
		description: "A balanced mix of strength, cardio and stretching.",
		goal: GoalGeneralFitness, difficulty: DifficultyIntermediate, equipment: []string{"dumbbells", "bands"},
		weeks: 2, days: 3, minutes: 30, published: true,
		sessions: []string{"Strength Mix", "Cardio Mix", "Stretch and Core"},
	},
	{
		slug: "powerlifting-draft", title: "Powerlifting Block",
		description: "Gym based strength block, not yet released.",
		goal: GoalMuscleGain, difficulty: DifficultyAdvanced, equipment: []string{"gym"},
		weeks: 1, days: 3, minutes: 60,
		sessions: []string{"Squat Day", "Bench Day", "Deadlift Day"},
	},
}

// SeedID derives a stable identifier so seeded programs keep their IDs
// across restarts.
func SeedID(slug string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("flow:program:"+slug)).String()
}

func intensityFor(d Difficulty, day int) Intensity {
	switch d {
	case DifficultyAdvanced:
		return IntensityHigh
	case DifficultyIntermediate:
		if day%2 == 0 {
			return IntensityHigh
		}
		return IntensityMedium
	}
	if day%3 == 0 {
		return IntensityMedium
	}
	return IntensityLow
}

// Seed loads the built in catalog into repo.
func Seed(repo Repo, now time.Time) error {
	for idx, sp := range catalog {
		description := sp.description
		p := &Program{
			ID:                SeedID(sp.slug),
			Title:             sp.title,
			Description:       &description,
			Goal:              sp.goal,
			Difficulty:        sp.difficulty,
			EquipmentNeeded:   sp.equipment,
			DurationWeeks:     sp.weeks,
			DaysPerWeek:       sp.days,
			MinutesPerSession: sp.minutes,
			IsFeatured:        sp.featured,
			IsPublished:       sp.published,
			OrderIndex:        idx,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := repo.UpsertProgram(p); err != nil {
			return errors.Wrapf(err, "[Seed] program %s", sp.slug)
		}

		total := sp.weeks * sp.days
		for day := 1; day <= total; day++ {
			session := sp.sessions[(day-1)%len(sp.sessions)]
			videoTitle := fmt.Sprintf("%s - %s", sp.title, session)
			w := &Workout{
				ID:              uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("flow:workout:%s:%d", sp.slug, day))).String(),
				ProgramID:       p.ID,
				WeekNumber:      (day-1)/sp.days + 1,
				DayNumber:       day,
				Title:           fmt.Sprintf("Day %d: %s", day, session),
				Intensity:       intensityFor(sp.difficulty, day),
				DurationMinutes: sp.minutes,
				VideoURL:        fmt.Sprintf("https://www.youtube.com/watch?v=%s-%d", sp.slug, day),
				VideoTitle:      &videoTitle,
				EquipmentNeeded: sp.equipment,
				Tags:            []string{string(sp.goal)},
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if err := repo.UpsertWorkout(w); err != nil {
				return errors.Wrapf(err, "[Seed] workout %s day %d", sp.slug, day)
			}
		}
	}
	return nil
}
