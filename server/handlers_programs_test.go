package server_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/jrsteele09/flow-client/apiclient"
	"github.com/jrsteele09/flow-client/authmodel"
	"github.com/jrsteele09/flow-client/internal/utils"
	"github.com/jrsteele09/flow-client/programs"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	t.Run("list is public and hides drafts", func(t *testing.T) {
		resp := f.api.ListPrograms(ctx, programs.ListFilter{})
		require.True(t, resp.OK(), "%v", resp.Error)
		require.Len(t, resp.Data, 7)
		for _, p := range resp.Data {
			require.True(t, p.IsPublished)
		}
	})

	t.Run("filters and paging", func(t *testing.T) {
		resp := f.api.ListPrograms(ctx, programs.ListFilter{Goal: programs.GoalWeightLoss})
		require.Len(t, resp.Data, 2)

		page := f.api.ListPrograms(ctx, programs.ListFilter{Limit: 2, Offset: 6})
		require.Len(t, page.Data, 1)
	})

	t.Run("bad query returns 422", func(t *testing.T) {
		resp, body := f.raw(t, http.MethodGet, "/programs?limit=0", "", "")
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		require.NotEmpty(t, body["detail"])
	})

	t.Run("featured", func(t *testing.T) {
		resp := f.api.FeaturedPrograms(ctx, 0)
		require.True(t, resp.OK())
		require.Len(t, resp.Data, 3)
	})

	t.Run("detail", func(t *testing.T) {
		resp := f.api.GetProgram(ctx, programs.SeedID("fat-burn-starter"))
		require.True(t, resp.OK())
		require.Equal(t, "Fat Burn Starter", resp.Data.Title)
		require.Equal(t, 6, resp.Data.TotalWorkouts)
	})

	t.Run("unknown and unpublished are not found", func(t *testing.T) {
		for _, id := range []string{"missing", programs.SeedID("powerlifting-draft")} {
			resp := f.api.GetProgram(ctx, id)
			require.False(t, resp.OK())
			require.Equal(t, http.StatusNotFound, resp.Error.Status)
			require.Equal(t, authmodel.CodeProgramNotFound, resp.Error.Code)
		}
	})

	t.Run("recommendations need a member", func(t *testing.T) {
		resp := f.api.RecommendedPrograms(ctx, 0)
		require.Equal(t, http.StatusUnauthorized, resp.Error.Status)
	})
}

func TestRecommendations(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	tokens := f.member(t, "sam@example.com")

	t.Run("without profile falls back to featured", func(t *testing.T) {
		resp := f.api.RecommendedPrograms(ctx, 0, apiclient.WithToken(tokens.AccessToken))
		require.True(t, resp.OK(), "%v", resp.Error)
		require.NotEmpty(t, resp.Data.Programs)
	})

	t.Run("matches goal and level", func(t *testing.T) {
		f.onboard(t, tokens.AccessToken)
		resp := f.api.RecommendedPrograms(ctx, 0, apiclient.WithToken(tokens.AccessToken))
		require.True(t, resp.OK())
		require.Equal(t, "Based on your goal: weight loss", resp.Data.Reason)
		require.Len(t, resp.Data.Programs, 1)
		require.Equal(t, programs.SeedID("fat-burn-starter"), resp.Data.Programs[0].ID)
	})
}

func TestEnrollmentAndProgress(t *testing.T) {
	ctx := context.Background()
	fatBurn := programs.SeedID("fat-burn-starter")

	t.Run("complete workouts in order", func(t *testing.T) {
		f := setupTestFixture(t)
		tokens := f.member(t, "sam@example.com")
		auth := apiclient.WithToken(tokens.AccessToken)

		enroll := f.api.Enroll(ctx, fatBurn, auth)
		require.True(t, enroll.OK(), "%v", enroll.Error)
		require.Equal(t, fatBurn, enroll.Data.ProgramID)
		require.NotEmpty(t, enroll.Data.EnrollmentID)

		again := f.api.Enroll(ctx, fatBurn, auth)
		require.Equal(t, authmodel.CodeAlreadyEnrolled, again.Error.Code)

		workouts := f.api.ProgramWorkouts(ctx, fatBurn, auth)
		require.True(t, workouts.OK())
		require.Len(t, workouts.Data, 6)
		require.False(t, workouts.Data[0].IsLocked)
		require.True(t, workouts.Data[1].IsLocked)

		early := f.api.CompleteWorkout(ctx, workouts.Data[1].ID, programs.MarkCompleteRequest{}, auth)
		require.Equal(t, authmodel.CodePreviousNotCompleted, early.Error.Code)

		done := f.api.CompleteWorkout(ctx, workouts.Data[0].ID, programs.MarkCompleteRequest{Rating: utils.Ptr(5)}, auth)
		require.True(t, done.OK(), "%v", done.Error)
		require.False(t, done.Data.ProgramCompleted)
		require.Equal(t, workouts.Data[1].ID, utils.Value(done.Data.NextWorkoutID))

		twice := f.api.CompleteWorkout(ctx, workouts.Data[0].ID, programs.MarkCompleteRequest{}, auth)
		require.Equal(t, authmodel.CodeAlreadyCompleted, twice.Error.Code)

		progress := f.api.ProgramProgress(ctx, fatBurn, auth)
		require.True(t, progress.OK())
		require.Equal(t, 1, progress.Data.WorkoutsCompleted)
		require.Equal(t, 2, progress.Data.CurrentDay)

		cont := f.api.ContinueSection(ctx, auth)
		require.True(t, cont.OK())
		require.Len(t, cont.Data.Enrollments, 1)
	})

	t.Run("invalid completion body", func(t *testing.T) {
		f := setupTestFixture(t)
		tokens := f.member(t, "sam@example.com")
		auth := apiclient.WithToken(tokens.AccessToken)
		require.True(t, f.api.Enroll(ctx, fatBurn, auth).OK())
		workouts := f.api.ProgramWorkouts(ctx, fatBurn, auth)

		resp := f.api.CompleteWorkout(ctx, workouts.Data[0].ID, programs.MarkCompleteRequest{Rating: utils.Ptr(9)}, auth)
		require.Equal(t, http.StatusUnprocessableEntity, resp.Error.Status)
	})

	t.Run("unknown workout", func(t *testing.T) {
		f := setupTestFixture(t)
		tokens := f.member(t, "sam@example.com")

		resp := f.api.CompleteWorkout(ctx, "missing", programs.MarkCompleteRequest{}, apiclient.WithToken(tokens.AccessToken))
		require.Equal(t, authmodel.CodeWorkoutNotFound, resp.Error.Code)
	})

	t.Run("active enrollment limit", func(t *testing.T) {
		f := setupTestFixture(t)
		tokens := f.member(t, "sam@example.com")
		auth := apiclient.WithToken(tokens.AccessToken)

		for _, slug := range []string{"fat-burn-starter", "strength-foundations", "morning-yoga-flow"} {
			require.True(t, f.api.Enroll(ctx, programs.SeedID(slug), auth).OK())
		}
		fourth := f.api.Enroll(ctx, programs.SeedID("mobility-reset"), auth)
		require.Equal(t, authmodel.CodeMaxEnrollments, fourth.Error.Code)

		left := f.api.Unenroll(ctx, fatBurn, auth)
		require.True(t, left.OK())
		require.True(t, f.api.Enroll(ctx, programs.SeedID("mobility-reset"), auth).OK())
	})

	t.Run("unenroll without enrollment", func(t *testing.T) {
		f := setupTestFixture(t)
		tokens := f.member(t, "sam@example.com")

		resp := f.api.Unenroll(ctx, fatBurn, apiclient.WithToken(tokens.AccessToken))
		require.Equal(t, authmodel.CodeNotEnrolled, resp.Error.Code)

		progress := f.api.ProgramProgress(ctx, fatBurn, apiclient.WithToken(tokens.AccessToken))
		require.Equal(t, http.StatusNotFound, progress.Error.Status)
	})
}

func TestAdmin(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	admin := f.api.Signin(ctx, authmodel.SigninRequest{Email: adminEmail, Password: adminPassword})
	require.True(t, admin.OK(), "%v", admin.Error)
	member := f.member(t, "sam@example.com")
	me := f.api.Me(ctx, apiclient.WithToken(member.AccessToken))
	require.True(t, me.OK())

	t.Run("members are forbidden", func(t *testing.T) {
		resp, body := f.raw(t, http.MethodGet, "/admin/users", "", member.AccessToken)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Equal(t, "Admin access required", body["detail"])
	})

	t.Run("list users", func(t *testing.T) {
		var list []map[string]any
		res := f.api.Do(ctx, http.MethodGet, "/admin/users", nil, &list, apiclient.WithToken(admin.Data.AccessToken))
		require.True(t, res.OK(), "%v", res.Error)
		require.Len(t, list, 2)
	})

	t.Run("deactivate signs the member out", func(t *testing.T) {
		f.clock.Advance(time.Minute)
		res := f.api.Do(ctx, http.MethodPost, "/admin/users/"+me.Data.ID+"/deactivate", nil, nil,
			apiclient.WithToken(admin.Data.AccessToken))
		require.True(t, res.OK(), "%v", res.Error)

		signin := f.api.Signin(ctx, authmodel.SigninRequest{Email: "sam@example.com", Password: password})
		require.Equal(t, authmodel.CodeAccountInactive, signin.Error.Code)
		refresh := f.api.Refresh(ctx, member.RefreshToken)
		require.False(t, refresh.OK())
		status := f.api.Status(ctx, apiclient.WithToken(member.AccessToken))
		require.Equal(t, http.StatusUnauthorized, status.Error.Status)
	})

	t.Run("activate restores access", func(t *testing.T) {
		res := f.api.Do(ctx, http.MethodPost, "/admin/users/"+me.Data.ID+"/activate", nil, nil,
			apiclient.WithToken(admin.Data.AccessToken))
		require.True(t, res.OK())

		f.clock.Advance(time.Second)
		signin := f.api.Signin(ctx, authmodel.SigninRequest{Email: "sam@example.com", Password: password})
		require.True(t, signin.OK())
	})

	t.Run("unknown user", func(t *testing.T) {
		res := f.api.Do(ctx, http.MethodPost, "/admin/users/missing/activate", nil, nil,
			apiclient.WithToken(admin.Data.AccessToken))
		require.Equal(t, http.StatusNotFound, res.Error.Status)
	})

	t.Run("admins cannot deactivate themselves", func(t *testing.T) {
		self := f.api.Me(ctx, apiclient.WithToken(admin.Data.AccessToken))
		res := f.api.Do(ctx, http.MethodPost, "/admin/users/"+self.Data.ID+"/deactivate", nil, nil,
			apiclient.WithToken(admin.Data.AccessToken))
		require.Equal(t, http.StatusBadRequest, res.Error.Status)
	})
}

func TestAdminPrograms(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	signin := f.api.Signin(ctx, authmodel.SigninRequest{Email: adminEmail, Password: adminPassword})
	require.True(t, signin.OK(), "%v", signin.Error)
	admin := apiclient.WithToken(signin.Data.AccessToken)
	member := f.member(t, "sam@example.com")

	var created programs.ProgramDetail
	create := programs.ProgramCreate{
		Title:             "Kettlebell Basics",
		Goal:              programs.GoalMuscleGain,
		Difficulty:        programs.DifficultyBeginner,
		DurationWeeks:     1,
		DaysPerWeek:       2,
		MinutesPerSession: 20,
		Workouts: []programs.WorkoutCreate{{
			WeekNumber: 1, DayNumber: 1, Title: "Swings", Intensity: programs.IntensityMedium,
			DurationMinutes: 20, VideoURL: "https://videos.example.com/swing",
		}},
	}

	t.Run("members are forbidden", func(t *testing.T) {
		resp, _ := f.raw(t, http.MethodPost, "/admin/programs", `{}`, member.AccessToken)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("create starts as a draft", func(t *testing.T) {
		res := f.api.Do(ctx, http.MethodPost, "/admin/programs", create, &created, admin)
		require.True(t, res.OK(), "%v", res.Error)
		require.Equal(t, http.StatusCreated, res.Status)
		require.False(t, created.IsPublished)
		require.Len(t, created.Workouts, 1)

		public := f.api.GetProgram(ctx, created.ID)
		require.Equal(t, http.StatusNotFound, public.Error.Status)
	})

	t.Run("invalid body", func(t *testing.T) {
		resp, body := f.raw(t, http.MethodPost, "/admin/programs", `{"title":""}`, signin.Data.AccessToken)
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		require.NotEmpty(t, body["detail"])
	})

	t.Run("publish makes it public", func(t *testing.T) {
		res := f.api.Do(ctx, http.MethodPost, "/admin/programs/"+created.ID+"/publish", nil, nil, admin)
		require.True(t, res.OK(), "%v", res.Error)
		public := f.api.GetProgram(ctx, created.ID)
		require.True(t, public.OK(), "%v", public.Error)
		require.Equal(t, "Kettlebell Basics", public.Data.Title)
	})

	t.Run("add workout", func(t *testing.T) {
		var workout programs.Workout
		body := programs.WorkoutCreate{
			WeekNumber: 1, DayNumber: 2, Title: "Goblet squats", Intensity: programs.IntensityHigh,
			DurationMinutes: 25, VideoURL: "https://videos.example.com/squat",
		}
		res := f.api.Do(ctx, http.MethodPost, "/admin/programs/"+created.ID+"/workouts", body, &workout, admin)
		require.True(t, res.OK(), "%v", res.Error)
		require.Equal(t, created.ID, workout.ProgramID)

		dup := f.api.Do(ctx, http.MethodPost, "/admin/programs/"+created.ID+"/workouts", body, nil, admin)
		require.Equal(t, authmodel.CodeDuplicateWorkoutDay, dup.Error.Code)

		var updated programs.Workout
		res = f.api.Do(ctx, http.MethodPut, "/admin/workouts/"+workout.ID, programs.WorkoutUpdate{Title: utils.Ptr("Front squats")}, &updated, admin)
		require.True(t, res.OK(), "%v", res.Error)
		require.Equal(t, "Front squats", updated.Title)

		res = f.api.Do(ctx, http.MethodDelete, "/admin/workouts/"+workout.ID, nil, nil, admin)
		require.True(t, res.OK(), "%v", res.Error)
		resp, body2 := f.raw(t, http.MethodGet, "/admin/workouts/"+workout.ID, "", signin.Data.AccessToken)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, "Workout not found", body2["detail"])
	})

	t.Run("update and list", func(t *testing.T) {
		var p programs.Program
		res := f.api.Do(ctx, http.MethodPut, "/admin/programs/"+created.ID, programs.ProgramUpdate{IsFeatured: utils.Ptr(true)}, &p, admin)
		require.True(t, res.OK(), "%v", res.Error)
		require.True(t, p.IsFeatured)

		var list []programs.Program
		res = f.api.Do(ctx, http.MethodGet, "/admin/programs", nil, &list, admin, apiclient.WithQuery(url.Values{"limit": {"500"}}))
		require.True(t, res.OK(), "%v", res.Error)
		require.Len(t, list, 9)

		bad := f.api.Do(ctx, http.MethodGet, "/admin/programs", nil, nil, admin, apiclient.WithQuery(url.Values{"limit": {"0"}}))
		require.Equal(t, http.StatusUnprocessableEntity, bad.Error.Status)
	})

	t.Run("delete", func(t *testing.T) {
		res := f.api.Do(ctx, http.MethodDelete, "/admin/programs/"+created.ID, nil, nil, admin)
		require.True(t, res.OK(), "%v", res.Error)
		resp, body := f.raw(t, http.MethodGet, "/admin/programs/"+created.ID, "", signin.Data.AccessToken)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, "Program not found", body["detail"])

		again := f.api.Do(ctx, http.MethodDelete, "/admin/programs/"+created.ID, nil, nil, admin)
		require.Equal(t, authmodel.CodeProgramNotFound, again.Error.Code)
	})
}
