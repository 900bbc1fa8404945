package repository

import (
	catalogRepo "fashionstudio/database/repository/catalog"
	generationRepo "fashionstudio/database/repository/generation"
	profileRepo "fashionstudio/database/repository/profile"
)

// Re-export the ProfileRepository interface, sentinels and constructors.
type ProfileRepository = profileRepo.ProfileRepository

var (
	NewFirestoreProfileRepo = profileRepo.NewFirestoreProfileRepo
	NewMongoProfileRepo     = profileRepo.NewMongoProfileRepo
	NewMemoryProfileRepo    = profileRepo.NewMemoryProfileRepo
	ErrProfileNotFound      = profileRepo.ErrProfileNotFound
	ErrProfileExists        = profileRepo.ErrProfileExists
	ErrInsufficientCredits  = profileRepo.ErrInsufficientCredits
)

// Re-export the GenerationRepository interface and constructors.
type GenerationRepository = generationRepo.GenerationRepository

var (
	NewFirestoreGenerationRepo = generationRepo.NewFirestoreGenerationRepo
	NewMongoGenerationRepo     = generationRepo.NewMongoGenerationRepo
	NewMemoryGenerationRepo    = generationRepo.NewMemoryGenerationRepo
	ErrRecordNotFound          = generationRepo.ErrRecordNotFound
)

// Re-export the CatalogRepository interface and constructor.
type CatalogRepository = catalogRepo.CatalogRepository

var (
	NewFirestoreCatalogRepo = catalogRepo.NewFirestoreCatalogRepo
	NewMongoCatalogRepo     = catalogRepo.NewMongoCatalogRepo
	NewMemoryCatalogRepo    = catalogRepo.NewMemoryCatalogRepo
)
