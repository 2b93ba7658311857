package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	APIPrefix = "/api/v1"

	RouteHealth = APIPrefix + "/health"

	// Auth Routes - Signup & Verification
	RouteAuthSignup    = APIPrefix + "/auth/signup"
	RouteAuthVerifyOTP = APIPrefix + "/auth/verify-otp"
	RouteAuthResendOTP = APIPrefix + "/auth/resend-otp"

	// Auth Routes - Sessions
	RouteAuthSignin  = APIPrefix + "/auth/signin"
	RouteAuthRefresh = APIPrefix + "/auth/refresh"
	RouteAuthLogout  = APIPrefix + "/auth/logout"
	RouteAuthStatus  = APIPrefix + "/auth/status"
	RouteAuthMe      = APIPrefix + "/auth/me"

	// Auth Routes - Password Management
	RouteAuthForgotPassword = APIPrefix + "/auth/forgot-password"
	RouteAuthResetPassword  = APIPrefix + "/auth/reset-password"
	RouteAuthChangePassword = APIPrefix + "/auth/change-password"

	// User Routes
	RouteUsersOnboarding = APIPrefix + "/users/onboarding"
	RouteUsersProfile    = APIPrefix + "/users/profile"

	// Program Routes
	RoutePrograms          = APIPrefix + "/programs"
	RouteProgramsFeatured  = APIPrefix + "/programs/featured"
	RouteProgramsRecommend = APIPrefix + "/programs/recommended"
	RouteProgramsContinue  = APIPrefix + "/programs/continue"
	RouteProgram           = APIPrefix + "/programs/{id}"
	RouteProgramProgress   = APIPrefix + "/programs/{id}/progress"
	RouteProgramWorkouts   = APIPrefix + "/programs/{id}/workouts"
	RouteProgramEnroll     = APIPrefix + "/programs/{id}/enroll"
	RouteWorkoutComplete   = APIPrefix + "/programs/workouts/{id}/complete"

	// Admin Routes
	RouteAdminUsers          = APIPrefix + "/admin/users"
	RouteAdminUserActivate   = APIPrefix + "/admin/users/{id}/activate"
	RouteAdminUserDeactivate = APIPrefix + "/admin/users/{id}/deactivate"

	RouteAdminPrograms         = APIPrefix + "/admin/programs"
	RouteAdminProgram          = APIPrefix + "/admin/programs/{id}"
	RouteAdminProgramPublish   = APIPrefix + "/admin/programs/{id}/publish"
	RouteAdminProgramUnpublish = APIPrefix + "/admin/programs/{id}/unpublish"
	RouteAdminProgramWorkouts  = APIPrefix + "/admin/programs/{id}/workouts"
	RouteAdminWorkout          = APIPrefix + "/admin/workouts/{id}"

	// Privacy Routes
	RoutePrivacyConsent = APIPrefix + "/privacy/consent"
	RoutePrivacyExport  = APIPrefix + "/privacy/export"
	RoutePrivacyAccount = APIPrefix + "/privacy/account"
)
