package config

// AdminConfig names the account the dev backend bootstraps at startup. The
// admin is only created when both values are set.
type AdminConfig interface {
	GetAdminEmail() string
	GetAdminPassword() string
}

type Admin struct{}

var _ AdminConfig = Admin{}

func (Admin) GetAdminEmail() string {
	return GetEnv("ADMIN_EMAIL", "")
}

func (Admin) GetAdminPassword() string {
	return GetEnv("ADMIN_PASSWORD", "")
}
