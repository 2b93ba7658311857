package server

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))

	// AUTH
	s.RegisterRouteHandler("POST "+RouteAuthSignup, ChainMiddleware(s.SignupHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthVerifyOTP, ChainMiddleware(s.VerifyOTPHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthResendOTP, ChainMiddleware(s.ResendOTPHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthSignin, ChainMiddleware(s.SigninHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthForgotPassword, ChainMiddleware(s.ForgotPasswordHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthResetPassword, ChainMiddleware(s.ResetPasswordHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthChangePassword, ChainMiddleware(s.ChangePasswordHandler(), s.APIMiddleware(s.RequireAuth)...))
	s.RegisterRouteHandler("GET "+RouteAuthStatus, ChainMiddleware(s.StatusHandler(), s.APIMiddleware(s.RequireAuth)...))
	s.RegisterRouteHandler("GET "+RouteAuthMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.RequireAuth)...))

	// USERS
	s.RegisterRouteHandler("POST "+RouteUsersOnboarding, ChainMiddleware(s.OnboardingHandler(), s.Member()...))
	s.RegisterRouteHandler("GET "+RouteUsersProfile, ChainMiddleware(s.GetProfileHandler(), s.Member()...))
	s.RegisterRouteHandler("PUT "+RouteUsersProfile, ChainMiddleware(s.UpdateProfileHandler(), s.Member()...))

	// PROGRAMS - catalog browsing is public
	s.RegisterRouteHandler("GET "+RoutePrograms, ChainMiddleware(s.ListProgramsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteProgramsFeatured, ChainMiddleware(s.FeaturedProgramsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteProgram, ChainMiddleware(s.GetProgramHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteProgramsRecommend, ChainMiddleware(s.RecommendedProgramsHandler(), s.Member()...))
	s.RegisterRouteHandler("GET "+RouteProgramsContinue, ChainMiddleware(s.ContinueHandler(), s.Member()...))
	s.RegisterRouteHandler("GET "+RouteProgramProgress, ChainMiddleware(s.ProgressHandler(), s.Member()...))
	s.RegisterRouteHandler("GET "+RouteProgramWorkouts, ChainMiddleware(s.ProgramWorkoutsHandler(), s.Member()...))
	s.RegisterRouteHandler("POST "+RouteProgramEnroll, ChainMiddleware(s.EnrollHandler(), s.Member()...))
	s.RegisterRouteHandler("DELETE "+RouteProgramEnroll, ChainMiddleware(s.UnenrollHandler(), s.Member()...))
	s.RegisterRouteHandler("POST "+RouteWorkoutComplete, ChainMiddleware(s.CompleteWorkoutHandler(), s.Member()...))

	// ADMIN
	s.RegisterRouteHandler("GET "+RouteAdminUsers, ChainMiddleware(s.AdminUsersListHandler(), s.Admin()...))
	s.RegisterRouteHandler("POST "+RouteAdminUserActivate, ChainMiddleware(s.AdminSetActiveHandler(true), s.Admin()...))
	s.RegisterRouteHandler("POST "+RouteAdminUserDeactivate, ChainMiddleware(s.AdminSetActiveHandler(false), s.Admin()...))
	s.RegisterRouteHandler("GET "+RouteAdminPrograms, ChainMiddleware(s.AdminProgramsListHandler(), s.Admin()...))
	s.RegisterRouteHandler("POST "+RouteAdminPrograms, ChainMiddleware(s.AdminCreateProgramHandler(), s.Admin()...))
	s.RegisterRouteHandler("GET "+RouteAdminProgram, ChainMiddleware(s.AdminGetProgramHandler(), s.Admin()...))
	s.RegisterRouteHandler("PUT "+RouteAdminProgram, ChainMiddleware(s.AdminUpdateProgramHandler(), s.Admin()...))
	s.RegisterRouteHandler("DELETE "+RouteAdminProgram, ChainMiddleware(s.AdminDeleteProgramHandler(), s.Admin()...))
	s.RegisterRouteHandler("POST "+RouteAdminProgramPublish, ChainMiddleware(s.AdminPublishHandler(true), s.Admin()...))
	s.RegisterRouteHandler("POST "+RouteAdminProgramUnpublish, ChainMiddleware(s.AdminPublishHandler(false), s.Admin()...))
	s.RegisterRouteHandler("POST "+RouteAdminProgramWorkouts, ChainMiddleware(s.AdminAddWorkoutHandler(), s.Admin()...))
	s.RegisterRouteHandler("GET "+RouteAdminWorkout, ChainMiddleware(s.AdminGetWorkoutHandler(), s.Admin()...))
	s.RegisterRouteHandler("PUT "+RouteAdminWorkout, ChainMiddleware(s.AdminUpdateWorkoutHandler(), s.Admin()...))
	s.RegisterRouteHandler("DELETE "+RouteAdminWorkout, ChainMiddleware(s.AdminDeleteWorkoutHandler(), s.Admin()...))

	// PRIVACY
	s.RegisterRouteHandler("GET "+RoutePrivacyConsent, ChainMiddleware(s.GetConsentHandler(), s.Member()...))
	s.RegisterRouteHandler("PUT "+RoutePrivacyConsent, ChainMiddleware(s.UpdateConsentHandler(), s.Member()...))
	s.RegisterRouteHandler("GET "+RoutePrivacyExport, ChainMiddleware(s.ExportDataHandler(), s.Member()...))
	s.RegisterRouteHandler("DELETE "+RoutePrivacyAccount, ChainMiddleware(s.DeleteAccountHandler(), s.Member()...))
}
