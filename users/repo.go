package users

type UserRepo interface {
	Upsert(user *User) error
	Delete(id string) error
	GetByEmail(email string) (*User, error)
	GetByID(ID string) (*User, error)
	List(offset, limit int) ([]*User, error)
	SetActive(id string, active bool) error
	SetVerified(id string, verified bool) error
	SetPassword(id string, passwordHash string) error
}

// ProfileRepo stores one profile per user.
type ProfileRepo interface {
	Upsert(profile *Profile) error
	GetByUserID(userID string) (*Profile, error)
	DeleteByUserID(userID string) error
}
