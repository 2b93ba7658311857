package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/jrsteele09/flow-client/apiclient"
	"github.com/jrsteele09/flow-client/authmodel"
	"github.com/jrsteele09/flow-client/internal/utils"
	"github.com/jrsteele09/flow-client/internal/validation"
	"github.com/jrsteele09/flow-client/programs"
	"github.com/jrsteele09/flow-client/users"
	"github.com/spf13/cobra"
)

func (a *app) programsCmd() *cobra.Command {
	var filter programs.ListFilter
	var goal, difficulty string
	cmd := &cobra.Command{
		Use:   "programs [--goal G] [--difficulty D] [--featured] [--limit N] [--offset N]",
		Short: "browse the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter.Goal = programs.Goal(goal)
			filter.Difficulty = programs.Difficulty(difficulty)
			resp := a.store.Client().ListPrograms(cmd.Context(), filter)
			if !resp.OK() {
				return a.failure(resp.Error, nil)
			}
			printPrograms(a, resp.Data)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&goal, "goal", "", "goal: "+users.Goals)
	fs.StringVar(&difficulty, "difficulty", "", "difficulty: "+users.FitnessLevels)
	fs.BoolVar(&filter.Featured, "featured", false, "featured programs only")
	fs.IntVar(&filter.Limit, "limit", 0, "page size")
	fs.IntVar(&filter.Offset, "offset", 0, "page offset")
	return cmd
}

func (a *app) programCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "program ID",
		Short: "show a program and its workouts",
		Args:  exactlyOne("program id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp := a.store.Client().GetProgram(cmd.Context(), args[0])
			if !resp.OK() {
				return a.failure(resp.Error, nil)
			}
			p := resp.Data
			a.printf("%s (%s, %s)\n", p.Title, p.Goal, p.Difficulty)
			if p.Description != nil {
				a.printf("%s\n", *p.Description)
			}
			a.printf("%d weeks, %d days a week, %d min sessions, %d workouts\n\n",
				p.DurationWeeks, p.DaysPerWeek, p.MinutesPerSession, p.TotalWorkouts)
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tWEEK\tDAY\tTITLE\tMIN\tINTENSITY")
			for _, w := range p.Workouts {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%d\t%s\n", w.ID, w.WeekNumber, w.DayNumber, w.Title, w.DurationMinutes, w.Intensity)
			}
			return tw.Flush()
		},
	}
}

func (a *app) recommendedCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recommended [--limit N]",
		Short: "programs matched to the profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			resp := authed(ctx, a, func(c *apiclient.Client) apiclient.Response[programs.Recommended] {
				return c.RecommendedPrograms(ctx, limit)
			})
			if !resp.OK() {
				return a.failure(resp.Error, nil)
			}
			a.printf("%s\n", resp.Data.Reason)
			printPrograms(a, resp.Data.Programs)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of programs")
	return cmd
}

func (a *app) continueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "continue",
		Short: "programs in progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			resp := authed(ctx, a, func(c *apiclient.Client) apiclient.Response[programs.ContinueSection] {
				return c.ContinueSection(ctx)
			})
			if !resp.OK() {
				return a.failure(resp.Error, nil)
			}
			if len(resp.Data.Enrollments) == 0 {
				a.printf("No programs in progress, browse with: flow programs\n")
				return nil
			}
			for _, e := range resp.Data.Enrollments {
				printProgress(a, e)
			}
			return nil
		},
	}
}

func (a *app) enrollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enroll ID",
		Short: "start a program",
		Args:  exactlyOne("program id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			resp := authed(ctx, a, func(c *apiclient.Client) apiclient.Response[programs.EnrollResponse] {
				return c.Enroll(ctx, args[0])
			})
			if !resp.OK() {
				return a.failure(resp.Error, nil)
			}
			a.printf("%s\n", resp.Data.Message)
			return nil
		},
	}
}

func (a *app) unenrollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unenroll ID",
		Short: "pause a program",
		Args:  exactlyOne("program id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			resp := authed(ctx, a, func(c *apiclient.Client) apiclient.Response[authmodel.MessageResponse] {
				return c.Unenroll(ctx, args[0])
			})
			if !resp.OK() {
				return a.failure(resp.Error, nil)
			}
			a.printf("%s\n", resp.Data.Message)
			return nil
		},
	}
}

func (a *app) workoutsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "workouts ID",
		Short: "list a program's workouts with progress",
		Args:  exactlyOne("program id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			resp := authed(ctx, a, func(c *apiclient.Client) apiclient.Response[[]programs.WorkoutWithProgress] {
				return c.ProgramWorkouts(ctx, args[0])
			})
			if !resp.OK() {
				return a.failure(resp.Error, nil)
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDAY\tTITLE\tSTATUS")
			for _, w := range resp.Data {
				status := "open"
				switch {
				case w.IsCompleted:
					status = "done"
				case w.IsLocked:
					status = "locked"
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", w.ID, w.DayNumber, w.Title, status)
			}
			return tw.Flush()
		},
	}
}

func (a *app) progressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress ID",
		Short: "show enrollment progress",
		Args:  exactlyOne("program id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			resp := authed(ctx, a, func(c *apiclient.Client) apiclient.Response[programs.EnrollmentProgress] {
				return c.ProgramProgress(ctx, args[0])
			})
			if !resp.OK() {
				return a.failure(resp.Error, nil)
			}
			printProgress(a, resp.Data)
			return nil
		},
	}
}

func (a *app) completeCmd() *cobra.Command {
	var minutes, rating int
	var felt, notes string
	cmd := &cobra.Command{
		Use:   "complete [--minutes N] [--rating N] [--felt F] [--notes T] WORKOUT_ID",
		Short: "mark a workout done",
		Args:  exactlyOne("workout id"),
	}
	fs := cmd.Flags()
	fs.IntVar(&minutes, "minutes", 0, "minutes spent")
	fs.IntVar(&rating, "rating", 0, "rating from 1 to 5")
	fs.StringVar(&felt, "felt", "", "difficulty felt: easy, just_right or hard")
	fs.StringVar(&notes, "notes", "", "notes")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		req := programs.MarkCompleteRequest{
			DurationMinutes: optional(fs, "minutes", minutes),
			Rating:          optional(fs, "rating", rating),
			DifficultyFelt:  optional(fs, "felt", felt),
			Notes:           optional(fs, "notes", notes),
		}
		if fe := validation.Struct(req); len(fe) > 0 {
			return a.failure(nil, fe)
		}

		ctx := cmd.Context()
		resp := authed(ctx, a, func(c *apiclient.Client) apiclient.Response[programs.MarkCompleteResponse] {
			return c.CompleteWorkout(ctx, args[0], req)
		})
		if !resp.OK() {
			return a.failure(resp.Error, nil)
		}
		a.printf("%s\n", resp.Data.Message)
		switch {
		case resp.Data.ProgramCompleted:
			a.printf("Program complete\n")
		case resp.Data.NextWorkoutID != nil:
			a.printf("Next workout: %s\n", utils.Value(resp.Data.NextWorkoutID))
		}
		return nil
	}
	return cmd
}

func printPrograms(a *app, list []programs.Program) {
	if len(list) == 0 {
		a.printf("No programs found\n")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tGOAL\tLEVEL\tWEEKS\tDAYS/WK\tFEATURED")
	for _, p := range list {
		featured := ""
		if p.IsFeatured {
			featured = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			p.ID, p.Title, p.Goal, p.Difficulty, p.DurationWeeks, p.DaysPerWeek, featured)
	}
	_ = tw.Flush()
}

func printProgress(a *app, e programs.EnrollmentProgress) {
	state := "active"
	switch {
	case e.CompletedAt != nil:
		state = "completed"
	case !e.IsActive:
		state = "paused"
	}
	a.printf("%s [%s] day %d of %d, %.0f%%, %d workouts, %d min\n",
		e.Program.Title, state, e.CurrentDay, e.TotalDays, e.ProgressPercent,
		e.WorkoutsCompleted, e.TotalMinutesCompleted)
	if e.NextWorkout != nil {
		a.printf("  next: %s (%s)\n", e.NextWorkout.Title, e.NextWorkout.ID)
	}
}

func printProfile(a *app, p *users.Profile) {
	if p == nil {
		return
	}
	show := func(label string, v *string) {
		if v != nil {
			a.printf("  %-16s %s\n", label, *v)
		}
	}
	show("name", p.DisplayName)
	show("fitness level", p.FitnessLevel)
	show("primary goal", p.PrimaryGoal)
	show("location", p.WorkoutLocation)
	if p.DaysPerWeek != nil {
		a.printf("  %-16s %d\n", "days per week", *p.DaysPerWeek)
	}
	if p.MinutesPerSession != nil {
		a.printf("  %-16s %d\n", "minutes", *p.MinutesPerSession)
	}
	if len(p.EquipmentAvailable) > 0 {
		a.printf("  %-16s %s\n", "equipment", strings.Join(p.EquipmentAvailable, ", "))
	}
}
