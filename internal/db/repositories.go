package db

import "gorm.io/gorm"

type Repositories struct {
	Cycles   *CycleRepository
	Profiles *ProfileRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Cycles:   NewCycleRepository(database),
		Profiles: NewProfileRepository(database),
	}
}
