package db

import "gorm.io/gorm"

type Repositories struct {
	Accounts          *AccountRepository
	Profiles          *ProfileRepository
	VerificationCodes *VerificationCodeRepository
	Sessions          *SessionRepository
	Projects          *ProjectRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Accounts:          NewAccountRepository(database),
		Profiles:          NewProfileRepository(database),
		VerificationCodes: NewVerificationCodeRepository(database),
		Sessions:          NewSessionRepository(database),
		Projects:          NewProjectRepository(database),
	}
}
